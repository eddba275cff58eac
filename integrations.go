package omnidim

import (
	"context"
	"fmt"
)

const (
	IntegrationTypeCustomAPI = "custom_api"
	IntegrationTypeCal       = "cal"

	defaultIntegrationRequestTimeout = 10
)

// IntegrationsService manages tool integrations that agents call during a
// conversation.
type IntegrationsService struct {
	client *Client
}

// Header is a static HTTP header sent by a custom API integration.
type Header struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// Param describes one query or body parameter of a custom API integration.
// When IsLLMGenerated is true the agent fills the value from the
// conversation.
type Param struct {
	Key            string `json:"key" validate:"required"`
	Description    string `json:"description,omitempty"`
	Type           string `json:"type,omitempty" validate:"omitempty,oneof=string number boolean"`
	Required       *bool  `json:"required,omitempty"`
	IsLLMGenerated *bool  `json:"isLLMGenerated,omitempty"`
}

// CustomAPIIntegration is an arbitrary HTTP endpoint exposed to agents.
type CustomAPIIntegration struct {
	Name        string   `json:"name" validate:"required"`
	URL         string   `json:"url" validate:"required"`
	Method      string   `json:"method" validate:"required"`
	Description string   `json:"description"`
	Headers     []Header `json:"headers" validate:"omitempty,dive"`
	BodyType    string   `json:"body_type"`
	BodyContent string   `json:"body_content"`
	BodyParams  []Param  `json:"body_params" validate:"omitempty,dive"`
	QueryParams []Param  `json:"query_params" validate:"omitempty,dive"`
	// StopListening pauses speech recognition while the request runs.
	StopListening bool `json:"stop_listening"`
	// RequestTimeout is the remote call timeout in seconds; zero means 10.
	RequestTimeout int `json:"request_timeout" validate:"gte=0"`
}

// CalIntegration connects a Cal.com calendar for booking.
type CalIntegration struct {
	Name        string `json:"name" validate:"required"`
	CalAPIKey   string `json:"cal_api_key" validate:"required"`
	CalID       string `json:"cal_id" validate:"required"`
	CalTimezone string `json:"cal_timezone" validate:"required"`
	Description string `json:"description"`
}

// FormatExamples returns sample payloads accepted by
// CreateIntegrationFromJSON, keyed by integration type.
func (s *IntegrationsService) FormatExamples() map[string]map[string]any {
	return map[string]map[string]any{
		IntegrationTypeCustomAPI: {
			"name":             "Example API Integration",
			"description":      "Integration with external service",
			"url":              "http://api.example.com/endpoint",
			"method":           "GET",
			"integration_type": IntegrationTypeCustomAPI,
			"headers": []any{
				map[string]any{"key": "Authorization", "value": "Bearer token123"},
				map[string]any{"key": "Content-Type", "value": "application/json"},
			},
			"query_params": []any{
				map[string]any{
					"key":            "user_id",
					"description":    "User identifier",
					"type":           "string",
					"required":       true,
					"isLLMGenerated": false,
				},
			},
			"body_params": []any{
				map[string]any{
					"key":            "message",
					"description":    "Message content",
					"type":           "string",
					"required":       true,
					"isLLMGenerated": true,
				},
			},
		},
		IntegrationTypeCal: {
			"name":             "Example Cal.com Integration",
			"description":      "Integration with Cal.com calendar",
			"cal_api_key":      "cal_api_key_12345",
			"cal_id":           "cal_user_id",
			"cal_timezone":     "America/New_York",
			"integration_type": IntegrationTypeCal,
		},
	}
}

// UserIntegrations lists every integration owned by the account.
func (s *IntegrationsService) UserIntegrations(ctx context.Context) (*Response, error) {
	return s.client.Get(ctx, "integrations", nil)
}

// CreateCustomAPIIntegration registers a custom HTTP integration.
func (s *IntegrationsService) CreateCustomAPIIntegration(ctx context.Context, in CustomAPIIntegration) (*Response, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	timeout := in.RequestTimeout
	if timeout == 0 {
		timeout = defaultIntegrationRequestTimeout
	}

	data := map[string]any{
		"name":             in.Name,
		"url":              in.URL,
		"method":           in.Method,
		"description":      in.Description,
		"integration_type": IntegrationTypeCustomAPI,
		"stop_listening":   in.StopListening,
		"request_timeout":  timeout,
	}
	if in.Headers != nil {
		data["headers"] = in.Headers
	}
	if in.BodyType != "" {
		data["body_type"] = in.BodyType
	}
	if in.BodyContent != "" {
		data["body_content"] = in.BodyContent
	}
	if in.BodyParams != nil {
		data["body_params"] = in.BodyParams
	}
	if in.QueryParams != nil {
		data["query_params"] = in.QueryParams
	}
	return s.client.Post(ctx, "integrations/custom-api", data)
}

// CreateCalIntegration registers a Cal.com integration.
func (s *IntegrationsService) CreateCalIntegration(ctx context.Context, in CalIntegration) (*Response, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	data := map[string]any{
		"name":             in.Name,
		"cal_api_key":      in.CalAPIKey,
		"cal_id":           in.CalID,
		"cal_timezone":     in.CalTimezone,
		"description":      in.Description,
		"integration_type": IntegrationTypeCal,
	}
	return s.client.Post(ctx, "integrations/cal", data)
}

// CreateIntegrationFromJSON creates an integration from a loosely typed
// document such as one produced by FormatExamples. The integration_type key
// selects the endpoint; the document is posted unchanged.
func (s *IntegrationsService) CreateIntegrationFromJSON(ctx context.Context, data map[string]any) (*Response, error) {
	if len(data) == 0 {
		return nil, validationErrorf("", "integration data must be a non-empty object")
	}
	kind, ok := data["integration_type"]
	if !ok {
		return nil, validationErrorf("integration_type", "is required")
	}

	var endpoint string
	switch kind {
	case IntegrationTypeCustomAPI:
		for _, field := range []string{"name", "url", "method"} {
			if _, ok := data[field]; !ok {
				return nil, validationErrorf(field, "is required for custom API integration")
			}
		}
		for _, field := range []string{"headers", "query_params", "body_params"} {
			if raw, ok := data[field]; ok {
				if err := validateParamList(field, raw); err != nil {
					return nil, err
				}
			}
		}
		endpoint = "integrations/custom-api"
	case IntegrationTypeCal:
		for _, field := range []string{"name", "cal_api_key", "cal_id", "cal_timezone"} {
			if _, ok := data[field]; !ok {
				return nil, validationErrorf(field, "is required for Cal.com integration")
			}
		}
		endpoint = "integrations/cal"
	default:
		return nil, validationErrorf("integration_type", "unsupported integration type: %v", kind)
	}
	return s.client.Post(ctx, endpoint, data)
}

// AgentIntegrations lists the integrations attached to an agent.
func (s *IntegrationsService) AgentIntegrations(ctx context.Context, agentID int) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, fmt.Sprintf("agents/%d/integrations", agentID), nil)
}

// AddIntegrationToAgent attaches an existing integration to an agent.
func (s *IntegrationsService) AddIntegrationToAgent(ctx context.Context, agentID, integrationID int) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	if err := positiveID("integration_id", integrationID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, fmt.Sprintf("agents/%d/integrations", agentID), map[string]any{
		"integration_id": integrationID,
	})
}

// RemoveIntegrationFromAgent detaches an integration from an agent.
func (s *IntegrationsService) RemoveIntegrationFromAgent(ctx context.Context, agentID, integrationID int) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	if err := positiveID("integration_id", integrationID); err != nil {
		return nil, err
	}
	return s.client.Delete(ctx, fmt.Sprintf("agents/%d/integrations/%d", agentID, integrationID))
}

// validateParamList checks a headers, query_params or body_params value
// decoded from JSON. A nil value is accepted.
func validateParamList(kind string, raw any) error {
	if raw == nil {
		return nil
	}
	items, ok := objectList(raw)
	if !ok {
		return validationErrorf(kind, "must be a list of objects")
	}

	required := []string{"key"}
	if kind == "headers" {
		required = []string{"key", "value"}
	}
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", kind, i)
		entry, ok := item.(map[string]any)
		if !ok {
			return validationErrorf(field, "must be an object")
		}
		for _, key := range required {
			if _, ok := entry[key]; !ok {
				return validationErrorf(field+"."+key, "is required")
			}
		}
		if kind == "headers" {
			continue
		}
		if t, ok := entry["type"]; ok {
			switch t {
			case "string", "number", "boolean":
			default:
				return validationErrorf(field+".type", "must be one of: string, number, boolean (got %v)", t)
			}
		}
		for _, key := range []string{"required", "isLLMGenerated"} {
			if v, ok := entry[key]; ok {
				if _, isBool := v.(bool); !isBool {
					return validationErrorf(field+"."+key, "must be a boolean")
				}
			}
		}
	}
	return nil
}
