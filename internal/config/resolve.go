package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceFile    Source = "config file"
	SourceDefault Source = "default"
	SourceUnset   Source = "unset"
)

// Overrides carries command-line values, which beat every other source.
type Overrides struct {
	APIKey  string
	BaseURL string
}

// Settings is the effective configuration for one CLI invocation.
type Settings struct {
	APIKey        string
	APIKeySource  Source
	BaseURL       string
	BaseURLSource Source
	Timeout       time.Duration
	ConfigPath    string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Resolve merges flags, environment and file values. The API key comes from
// the flag, then OMNIDIM_API_KEY, then OMNIDIMENSION_API_KEY, then the file.
// The base URL comes from the flag, then OMNIDIM_BASE_URL, then the file,
// then the SDK default.
func Resolve(cfg *Config, flags Overrides, lookup LookupFunc) (Settings, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	s := Settings{APIKeySource: SourceUnset, BaseURLSource: SourceDefault, BaseURL: omnidim.DefaultBaseURL}

	switch {
	case strings.TrimSpace(flags.APIKey) != "":
		s.APIKey, s.APIKeySource = strings.TrimSpace(flags.APIKey), SourceFlag
	case envValue(lookup, EnvAPIKey) != "":
		s.APIKey, s.APIKeySource = envValue(lookup, EnvAPIKey), SourceEnv
	case envValue(lookup, EnvAPIKeyLegacy) != "":
		s.APIKey, s.APIKeySource = envValue(lookup, EnvAPIKeyLegacy), SourceEnv
	case strings.TrimSpace(cfg.APIKey) != "":
		s.APIKey, s.APIKeySource = strings.TrimSpace(cfg.APIKey), SourceFile
	}

	switch {
	case strings.TrimSpace(flags.BaseURL) != "":
		s.BaseURL, s.BaseURLSource = strings.TrimSpace(flags.BaseURL), SourceFlag
	case envValue(lookup, EnvBaseURL) != "":
		s.BaseURL, s.BaseURLSource = envValue(lookup, EnvBaseURL), SourceEnv
	case strings.TrimSpace(cfg.BaseURL) != "":
		s.BaseURL, s.BaseURLSource = strings.TrimSpace(cfg.BaseURL), SourceFile
	}
	if err := validateBaseURL(s.BaseURL); err != nil {
		return s, err
	}

	timeout := envValue(lookup, EnvTimeout)
	if timeout == "" {
		timeout = cfg.Timeout
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return s, fmt.Errorf("invalid timeout %q: want a positive duration such as 30s", timeout)
		}
		s.Timeout = d
	}
	return s, nil
}

func envValue(lookup LookupFunc, name string) string {
	v, _ := lookup(name)
	return strings.TrimSpace(v)
}

// ClientOptions converts the settings into SDK client options.
func (s Settings) ClientOptions() []omnidim.Option {
	opts := []omnidim.Option{omnidim.WithBaseURL(s.BaseURL)}
	if s.Timeout > 0 {
		opts = append(opts, omnidim.WithTimeout(s.Timeout))
	}
	return opts
}
