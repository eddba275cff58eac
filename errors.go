package omnidim

import "fmt"

// ConfigurationError reports invalid or missing client settings detected
// while constructing a Client.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// ValidationError reports malformed caller input. It is always returned
// before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// APIError reports a request the remote service rejected, or one that never
// got a response. StatusCode is 0 for transport failures.
type APIError struct {
	StatusCode int
	Message    string
	// Response holds the decoded error body when the server sent a JSON object.
	Response map[string]any
	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether the request failed before any HTTP response
// was received.
func (e *APIError) IsNetworkError() bool {
	return e.StatusCode == 0
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
