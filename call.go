package omnidim

import (
	"context"
	"fmt"
	"strings"
)

// CallService dispatches outbound calls and reads call logs.
type CallService struct {
	client *Client
}

// CallLogOptions filters GetCallLogs. Zero values use page 1, 30 per page
// and no agent filter.
type CallLogOptions struct {
	Page     int
	PageSize int
	AgentID  int
}

type dispatchRequest struct {
	AgentID     int            `json:"agent_id"`
	ToNumber    string         `json:"to_number"`
	CallContext map[string]any `json:"call_context"`
}

// DispatchCall asks agentID to call toNumber, which must be in E.164 form
// starting with '+'. callContext is made available to the agent during the
// call; nil is sent as an empty object.
func (s *CallService) DispatchCall(ctx context.Context, agentID int, toNumber string, callContext map[string]any) (*Response, error) {
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(toNumber, "+") {
		return nil, validationErrorf("to_number", "must start with + and a country code, got %q", toNumber)
	}
	if callContext == nil {
		callContext = map[string]any{}
	}
	return s.client.Post(ctx, "calls/dispatch", dispatchRequest{
		AgentID:     agentID,
		ToNumber:    toNumber,
		CallContext: callContext,
	})
}

// GetCallLogs returns one page of call logs.
func (s *CallService) GetCallLogs(ctx context.Context, opts CallLogOptions) (*Response, error) {
	if opts.AgentID < 0 {
		return nil, validationErrorf("agent_id", "must be a positive integer, got %d", opts.AgentID)
	}
	page, pageSize := pageDefaults(opts.Page, opts.PageSize, defaultCallPageSize)
	query := map[string]any{"pageno": page, "pagesize": pageSize}
	if opts.AgentID > 0 {
		query["agentid"] = opts.AgentID
	}
	return s.client.Get(ctx, "calls/logs", query)
}

// GetCallLog returns a single call log with transcript and metadata.
func (s *CallService) GetCallLog(ctx context.Context, callLogID int) (*Response, error) {
	if err := positiveID("call_log_id", callLogID); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, fmt.Sprintf("calls/logs/%d", callLogID), nil)
}
