package omnidim

import (
	"context"
	"fmt"
)

const (
	defaultSimulationPageSize     = 10
	defaultSimulationCalls        = 1
	defaultSimulationConcurrency  = 3
	defaultSimulationCallDuration = 3
)

var voiceProviders = []string{"eleven_labs", "deepgram", "cartesia", "rime", "inworld"}

// SimulationService runs scripted test calls against an agent.
type SimulationService struct {
	client *Client
}

// SelectedVoice is a caller voice used when playing a scenario. ID is the
// provider's voice identifier, a string or a number depending on provider.
type SelectedVoice struct {
	ID       any    `json:"id"`
	Provider string `json:"provider" validate:"required,oneof=eleven_labs deepgram cartesia rime inworld"`
}

// Scenario is one scripted conversation and the outcome it should produce.
// ID is only set when updating an existing scenario.
type Scenario struct {
	ID             int             `json:"id,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ExpectedResult string          `json:"expected_result"`
	SelectedVoices []SelectedVoice `json:"selected_voices,omitempty" validate:"omitempty,dive"`
}

// CreateSimulationRequest describes a new simulation. Zero counts fall back
// to 1 call, 3 concurrent calls and 3 minutes per call.
type CreateSimulationRequest struct {
	Name                     string     `json:"name" validate:"required"`
	AgentID                  int        `json:"agent_id" validate:"gt=0"`
	NumberOfCallToMake       int        `json:"number_of_call_to_make" validate:"gte=0"`
	ConcurrentCallCount      int        `json:"concurrent_call_count" validate:"gte=0"`
	MaxCallDurationInMinutes int        `json:"max_call_duration_in_minutes" validate:"gte=0"`
	Scenarios                []Scenario `json:"scenarios,omitempty" validate:"omitempty,dive"`
}

// Create creates a simulation.
func (s *SimulationService) Create(ctx context.Context, req CreateSimulationRequest) (*Response, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	for i, sc := range req.Scenarios {
		for j, v := range sc.SelectedVoices {
			if v.ID == nil {
				return nil, validationErrorf(fmt.Sprintf("scenarios[%d].selected_voices[%d].id", i, j), "is required")
			}
		}
	}
	if req.NumberOfCallToMake == 0 {
		req.NumberOfCallToMake = defaultSimulationCalls
	}
	if req.ConcurrentCallCount == 0 {
		req.ConcurrentCallCount = defaultSimulationConcurrency
	}
	if req.MaxCallDurationInMinutes == 0 {
		req.MaxCallDurationInMinutes = defaultSimulationCallDuration
	}
	return s.client.Post(ctx, "simulations", req)
}

// List returns one page of simulations, 10 per page by default.
func (s *SimulationService) List(ctx context.Context, page, pageSize int) (*Response, error) {
	page, pageSize = pageDefaults(page, pageSize, defaultSimulationPageSize)
	return s.client.Get(ctx, "simulations", map[string]any{"pageno": page, "pagesize": pageSize})
}

// Get returns a simulation with its scenarios and results.
func (s *SimulationService) Get(ctx context.Context, simulationID int) (*Response, error) {
	if err := positiveID("simulation_id", simulationID); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, simulationPath(simulationID, ""), nil)
}

// Update applies a partial update. When data carries scenarios they are
// checked like the ones passed to Create.
func (s *SimulationService) Update(ctx context.Context, simulationID int, data map[string]any) (*Response, error) {
	if err := positiveID("simulation_id", simulationID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, validationErrorf("data", "update data must be a non-empty object")
	}
	if raw, ok := data["scenarios"]; ok && raw != nil {
		if err := validateScenarios(raw); err != nil {
			return nil, err
		}
	}
	return s.client.Put(ctx, simulationPath(simulationID, ""), data)
}

// Delete removes a simulation.
func (s *SimulationService) Delete(ctx context.Context, simulationID int) (*Response, error) {
	if err := positiveID("simulation_id", simulationID); err != nil {
		return nil, err
	}
	return s.client.Delete(ctx, simulationPath(simulationID, ""))
}

// Start begins placing the simulation's calls.
func (s *SimulationService) Start(ctx context.Context, simulationID int) (*Response, error) {
	if err := positiveID("simulation_id", simulationID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, simulationPath(simulationID, "start"), map[string]any{})
}

// Stop halts a running simulation.
func (s *SimulationService) Stop(ctx context.Context, simulationID int) (*Response, error) {
	if err := positiveID("simulation_id", simulationID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, simulationPath(simulationID, "stop"), nil)
}

// EnhancePrompt asks the backend to suggest prompt improvements from the
// simulation's results.
func (s *SimulationService) EnhancePrompt(ctx context.Context, simulationID int) (*Response, error) {
	if err := positiveID("simulation_id", simulationID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, simulationPath(simulationID, "enhance-prompt"), nil)
}

func simulationPath(id int, action string) string {
	if action == "" {
		return fmt.Sprintf("simulations/%d", id)
	}
	return fmt.Sprintf("simulations/%d/%s", id, action)
}

// validateScenarios checks scenarios supplied as untyped data: the text
// fields must be strings and each selected voice needs an id and a known
// provider.
func validateScenarios(raw any) error {
	items, ok := objectList(raw)
	if !ok {
		return validationErrorf("scenarios", "must be a list of scenario objects")
	}
	for i, item := range items {
		field := fmt.Sprintf("scenarios[%d]", i)
		sc, ok := item.(map[string]any)
		if !ok {
			return validationErrorf(field, "must be an object")
		}
		for _, key := range []string{"name", "description", "expected_result"} {
			v, ok := sc[key]
			if !ok {
				return validationErrorf(field+"."+key, "is required")
			}
			if _, isString := v.(string); !isString {
				return validationErrorf(field+"."+key, "must be a string")
			}
		}
		rawVoices, ok := sc["selected_voices"]
		if !ok {
			continue
		}
		voices, ok := objectList(rawVoices)
		if !ok {
			return validationErrorf(field+".selected_voices", "must be a list of objects")
		}
		for j, rv := range voices {
			vfield := fmt.Sprintf("%s.selected_voices[%d]", field, j)
			voice, ok := rv.(map[string]any)
			if !ok {
				return validationErrorf(vfield, "must be an object")
			}
			if _, ok := voice["id"]; !ok {
				return validationErrorf(vfield+".id", "is required")
			}
			provider, ok := voice["provider"]
			if !ok {
				return validationErrorf(vfield+".provider", "is required")
			}
			if !knownVoiceProvider(provider) {
				return validationErrorf(vfield+".provider", "must be one of: eleven_labs, deepgram, cartesia, rime, inworld (got %v)", provider)
			}
		}
	}
	return nil
}

func knownVoiceProvider(v any) bool {
	name, ok := v.(string)
	if !ok {
		return false
	}
	for _, p := range voiceProviders {
		if p == name {
			return true
		}
	}
	return false
}

// objectList accepts the list shapes produced by encoding/json and by Go
// callers building maps by hand.
func objectList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		items := make([]any, 0, len(v))
		for _, m := range v {
			items = append(items, m)
		}
		return items, true
	}
	return nil, false
}
