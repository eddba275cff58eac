// Package payload turns command-line input into request bodies.
package payload

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

// DefaultContextTitle names the single section built from plain-text
// context.
const DefaultContextTitle = "Purpose"

var phoneRe = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// LoadFile reads a JSON or YAML document; .yaml and .yml select YAML.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	default:
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if out == nil {
		return nil, fmt.Errorf("parsing %s: expected an object", path)
	}
	return out, nil
}

// LoadInto reads a JSON or YAML document into v.
func LoadInto(path string, v any) error {
	doc, err := LoadFile(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encoding %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// ParseObject parses a JSON object given inline on the command line.
func ParseObject(s string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("invalid JSON: expected an object")
	}
	return out, nil
}

// FromFileOrInline returns the document at path if set, else the inline
// JSON object. One of them is required.
func FromFileOrInline(path, inline string) (map[string]any, error) {
	switch {
	case path != "":
		return LoadFile(path)
	case inline != "":
		return ParseObject(inline)
	default:
		return nil, fmt.Errorf("either --file or --data is required")
	}
}

// ParseContext accepts either a JSON list of {title, body} sections or
// plain text, which becomes a single section. Blank input yields nil.
func ParseContext(s string) []omnidim.ContextSection {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var sections []omnidim.ContextSection
	if err := json.Unmarshal([]byte(s), &sections); err == nil && sections != nil {
		return sections
	}
	return []omnidim.ContextSection{{Title: DefaultContextTitle, Body: s}}
}

// ParseIDs parses a comma separated list of positive integers.
func ParseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := ParseID(part, "ID")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one ID is required")
	}
	return ids, nil
}

// ParseID parses a positive integer, naming field in errors.
func ParseID(s, field string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer", field)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", field)
	}
	return id, nil
}

// ValidatePhone checks an international number: '+' then 7 to 15 digits.
// Spaces and dashes are ignored; the cleaned number is returned.
func ValidatePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	clean := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	if !strings.HasPrefix(clean, "+") {
		return "", fmt.Errorf("phone number must start with + (international format)")
	}
	if !phoneRe.MatchString(clean) {
		return "", fmt.Errorf("phone number must be 7-15 digits after +")
	}
	return clean, nil
}

// Document is a file read for a knowledge base upload.
type Document struct {
	Name string
	Size int64
	// Data is the base64-encoded file content.
	Data string
}

// ReadPDF reads a PDF from disk for upload.
func ReadPDF(path string) (*Document, error) {
	name := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return nil, fmt.Errorf("only PDF files are supported, got %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Document{
		Name: name,
		Size: int64(len(data)),
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// UploadAllowed reads a can_upload response. The can_upload flag wins;
// without it the success flag decides.
func UploadAllowed(body map[string]any) (bool, string) {
	allowed, ok := body["can_upload"].(bool)
	if !ok {
		allowed, _ = body["success"].(bool)
	}
	msg, _ := body["message"].(string)
	if !allowed && msg == "" {
		msg = "upload not allowed"
	}
	return allowed, msg
}
