package omnidim

import (
	"encoding/json"
	"fmt"
)

// Response is the envelope returned by every successful call.
type Response struct {
	Status int `json:"status"`
	// JSON is the decoded response body. It is an empty map when the body was
	// empty and for every DELETE request.
	JSON any `json:"json"`
}

// Object returns the body as a JSON object, or nil when the body is some
// other JSON value.
func (r *Response) Object() map[string]any {
	if r == nil {
		return nil
	}
	obj, _ := r.JSON.(map[string]any)
	return obj
}

// Field returns a top-level field of an object body.
func (r *Response) Field(name string) (any, bool) {
	obj := r.Object()
	if obj == nil {
		return nil, false
	}
	v, ok := obj[name]
	return v, ok
}

// Decode re-encodes the body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return fmt.Errorf("decode: nil response")
	}
	raw, err := json.Marshal(r.JSON)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
