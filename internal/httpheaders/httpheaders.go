// Package httpheaders merges outbound request headers using case-insensitive
// name matching.
package httpheaders

import (
	"net/http"
	"sort"
	"strings"
)

// WithDefaults returns a new map holding headers plus every entry of defaults
// whose name is not already present. Caller-supplied names always win, even
// when their casing differs from the default.
func WithDefaults(headers, defaults map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+len(defaults))
	for name, value := range headers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out[name] = value
	}

	for _, name := range sortedKeys(defaults) {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := Lookup(out, trimmed); ok {
			continue
		}
		out[trimmed] = defaults[name]
	}
	return out
}

// Lookup returns the value stored under name, ignoring case.
func Lookup(headers map[string]string, name string) (string, bool) {
	for key, value := range headers {
		if strings.EqualFold(strings.TrimSpace(key), strings.TrimSpace(name)) {
			return value, true
		}
	}
	return "", false
}

// Apply writes headers onto h in a stable order.
func Apply(h http.Header, headers map[string]string) {
	for _, name := range sortedKeys(headers) {
		h.Set(name, headers[name])
	}
}

func sortedKeys(src map[string]string) []string {
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		li := strings.ToLower(keys[i])
		lj := strings.ToLower(keys[j])
		if li == lj {
			return keys[i] < keys[j]
		}
		return li < lj
	})
	return keys
}
