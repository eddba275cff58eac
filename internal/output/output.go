package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// Format selects how command results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

func Success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✅ "+format+"\n", args...)
}

func Error(w io.Writer, format string, args ...any) {
	errorColor.Fprintf(w, "❌ "+format+"\n", args...)
}

func Warning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "⚠️  "+format+"\n", args...)
}

func Info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, format+"\n", args...)
}

// Header prints a bold section title.
func Header(w io.Writer, title string) {
	headerColor.Fprintln(w, title)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// YAML writes v as YAML.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Column maps a table header to a cell formatter.
type Column struct {
	Header string
	Value  func(row map[string]any) string
}

// Field returns a Column that prints the first non-empty key of a row.
func Field(header string, keys ...string) Column {
	return Column{Header: header, Value: func(row map[string]any) string {
		for _, key := range keys {
			if s := Text(row[key]); s != "" {
				return s
			}
		}
		return ""
	}}
}

// Table renders rows with the given columns.
func Table(w io.Writer, columns []Column, rows []map[string]any) {
	table := tablewriter.NewWriter(w)
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = col.Value(row)
		}
		table.Append(cells)
	}
	table.Render()
}

// KeyValues renders a JSON object as a two-column table with sorted keys.
func KeyValues(w io.Writer, obj map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	for _, k := range keys {
		table.Append([]string{k, Truncate(Text(obj[k]), 80)})
	}
	table.Render()
}

// Render writes data in the requested format. For tables, a list found
// under one of listKeys is shown with columns; other bodies fall back to
// key/value or JSON output.
func Render(w io.Writer, format Format, data any, columns []Column, listKeys ...string) error {
	switch format {
	case FormatJSON:
		return JSON(w, data)
	case FormatYAML:
		return YAML(w, data)
	}

	if rows, ok := Items(data, listKeys...); ok && len(columns) > 0 {
		if len(rows) == 0 {
			Warning(w, "No results found")
			return nil
		}
		Table(w, columns, rows)
		return nil
	}
	if obj, ok := data.(map[string]any); ok {
		KeyValues(w, obj)
		return nil
	}
	return JSON(w, data)
}

// Items finds the list of objects in a response body: the body itself when
// it is a list, or the first of keys holding a list.
func Items(data any, keys ...string) ([]map[string]any, bool) {
	var list []any
	switch v := data.(type) {
	case []any:
		list = v
	case map[string]any:
		found := false
		for _, key := range keys {
			if l, ok := v[key].([]any); ok {
				list, found = l, true
				break
			}
		}
		if !found {
			return nil, false
		}
	default:
		return nil, false
	}

	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows, true
}

// Text formats a decoded JSON value for a table cell.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case []any, map[string]any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	default:
		return fmt.Sprint(t)
	}
}

// Truncate shortens s to max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// ExtractID returns the integer id field of a response body.
func ExtractID(data any, field string) (int, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := obj[field].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

// FileSize formats a byte count using binary units.
func FileSize(n int64) string {
	switch {
	case n > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n > 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
