package omnidim

import (
	"context"
	"fmt"
)

const (
	defaultAgentPageSize = 30
	defaultCallPageSize  = 30
)

// AgentService manages voice agents.
type AgentService struct {
	client *Client
}

// ContextSection is one titled block of an agent's system prompt.
type ContextSection struct {
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	IsEnabled *bool  `json:"is_enabled,omitempty"`
}

// VoiceConfig selects the text-to-speech voice.
type VoiceConfig struct {
	Provider string `json:"provider" validate:"required,oneof=eleven_labs deepgram google cartesia rime"`
	VoiceID  string `json:"voice_id" validate:"required"`
}

// ModelConfig selects the LLM that drives the conversation.
type ModelConfig struct {
	Model       string   `json:"model" validate:"required"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// TranscriberConfig selects the speech-to-text engine.
type TranscriberConfig struct {
	Provider string `json:"provider" validate:"required"`
	Model    string `json:"model,omitempty"`
}

// FillerConfig controls filler phrases spoken while the agent waits.
type FillerConfig struct {
	Enabled  bool `json:"enabled"`
	AfterSec *int `json:"after_sec,omitempty" validate:"omitempty,gte=0"`
}

// CreateAgentRequest is the body of an agent creation. Name and
// ContextBreakdown are required; everything else is optional.
type CreateAgentRequest struct {
	Name              string             `json:"name" validate:"required"`
	ContextBreakdown  []ContextSection   `json:"context_breakdown" validate:"required,dive"`
	WelcomeMessage    string             `json:"welcome_message,omitempty"`
	CallType          string             `json:"call_type,omitempty" validate:"omitempty,oneof=Incoming Outgoing"`
	Voice             *VoiceConfig       `json:"voice,omitempty"`
	Model             *ModelConfig       `json:"model,omitempty"`
	Transcriber       *TranscriberConfig `json:"transcriber,omitempty"`
	WebSearchProvider string             `json:"web_search_provider,omitempty" validate:"omitempty,oneof=DuckDuckGo OpenAI"`
	Filler            *FillerConfig      `json:"filler,omitempty"`
}

// List returns one page of agents. Non-positive arguments use the defaults
// of page 1 and 30 agents per page.
func (s *AgentService) List(ctx context.Context, page, pageSize int) (*Response, error) {
	page, pageSize = pageDefaults(page, pageSize, defaultAgentPageSize)
	return s.client.Get(ctx, "agents", map[string]any{"pageno": page, "pagesize": pageSize})
}

// Get returns a single agent.
func (s *AgentService) Get(ctx context.Context, agentID int) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, fmt.Sprintf("agents/%d", agentID), nil)
}

// Create creates an agent.
func (s *AgentService) Create(ctx context.Context, req CreateAgentRequest) (*Response, error) {
	if req.ContextBreakdown == nil {
		return nil, validationErrorf("context_breakdown", "must be a list of sections")
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, "agents/create", req)
}

// Update applies a partial update. Keys of data are sent as-is.
func (s *AgentService) Update(ctx context.Context, agentID int, data map[string]any) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return s.client.Put(ctx, fmt.Sprintf("agents/%d", agentID), data)
}

// Delete removes an agent.
func (s *AgentService) Delete(ctx context.Context, agentID int) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	return s.client.Delete(ctx, fmt.Sprintf("agents/%d", agentID))
}

func pageDefaults(page, pageSize, defaultSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	return page, pageSize
}
