package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

type seenRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, body string) (*Server, *atomic.Int32, chan seenRequest) {
	t.Helper()
	var calls atomic.Int32
	seen := make(chan seenRequest, 8)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)
		seen <- seenRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: decoded}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(api.Close)

	client, err := omnidim.NewClient("sk-test-12345678", omnidim.WithBaseURL(api.URL+"/api/v1"))
	require.NoError(t, err)
	return New(client, nil), &calls, seen
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func TestDispatchCallRejectsBadNumber(t *testing.T) {
	t.Parallel()

	s, calls, _ := newTestServer(t, http.StatusOK, `{}`)
	result, err := s.dispatchCall(context.Background(), callRequest("dispatch_a_call", map[string]any{
		"assistant_id": float64(3),
		"to_number":    "5551234567",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Zero(t, calls.Load())
}

func TestDispatchCallMissingArgument(t *testing.T) {
	t.Parallel()

	s, calls, _ := newTestServer(t, http.StatusOK, `{}`)
	result, err := s.dispatchCall(context.Background(), callRequest("dispatch_a_call", map[string]any{
		"to_number": "+15551234567",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Zero(t, calls.Load())
}

func TestDispatchCallSuccess(t *testing.T) {
	t.Parallel()

	s, _, seen := newTestServer(t, http.StatusOK, `{"success": true}`)
	result, err := s.dispatchCall(context.Background(), callRequest("dispatch_a_call", map[string]any{
		"assistant_id": float64(3),
		"to_number":    "+15551234567",
		"call_context": map[string]any{"customer_name": "Ada"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	req := <-seen
	assert.Equal(t, "/api/v1/calls/dispatch", req.path)
	assert.Equal(t, map[string]any{"customer_name": "Ada"}, req.body["call_context"])

	resp, ok := result.StructuredContent.(*omnidim.Response)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestCreateAssistant(t *testing.T) {
	t.Parallel()

	s, _, seen := newTestServer(t, http.StatusOK, `{"id": 5}`)
	result, err := s.createAssistant(context.Background(), callRequest("create_assistant", map[string]any{
		"name": "Concierge",
		"context_breakdown": []any{
			map[string]any{"title": "Role", "body": "Answer hotel questions"},
		},
		"welcome_message": "Hello!",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	req := <-seen
	assert.Equal(t, "/api/v1/agents/create", req.path)
	assert.Equal(t, "Concierge", req.body["name"])
	assert.Equal(t, "Hello!", req.body["welcome_message"])
}

func TestCreateAssistantRejectsMalformedContext(t *testing.T) {
	t.Parallel()

	s, calls, _ := newTestServer(t, http.StatusOK, `{}`)
	for _, breakdown := range []any{"plain text", []any{map[string]any{"title": "Role"}}} {
		result, err := s.createAssistant(context.Background(), callRequest("create_assistant", map[string]any{
			"name":              "Concierge",
			"context_breakdown": breakdown,
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	}
	assert.Zero(t, calls.Load())
}

func TestAPIErrorsBecomeToolErrors(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(t, http.StatusNotFound, `{"error": "not found"}`)
	result, err := s.getAssistant(context.Background(), callRequest("get_assistant", map[string]any{"assistant_id": float64(99)}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "not found")
}

func TestListToolsUseDefaults(t *testing.T) {
	t.Parallel()

	s, _, seen := newTestServer(t, http.StatusOK, `{}`)
	ctx := context.Background()

	_, err := s.listAssistants(ctx, callRequest("list_assistants", nil))
	require.NoError(t, err)
	assert.Equal(t, "pageno=1&pagesize=30", (<-seen).query)

	_, err = s.listSimulations(ctx, callRequest("list_simulations", nil))
	require.NoError(t, err)
	assert.Equal(t, "pageno=1&pagesize=10", (<-seen).query)

	_, err = s.listCallLogs(ctx, callRequest("list_call_logs", map[string]any{"assistant_id": float64(4)}))
	require.NoError(t, err)
	assert.Equal(t, "agentid=4&pageno=1&pagesize=30", (<-seen).query)

	_, err = s.startSimulation(ctx, callRequest("start_simulation", map[string]any{"simulation_id": float64(8)}))
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/simulations/8/start", (<-seen).path)

	_, err = s.getCallLog(ctx, callRequest("get_call_log", map[string]any{"call_log_id": float64(12)}))
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/calls/logs/12", (<-seen).path)
}

func TestAssistantResources(t *testing.T) {
	t.Parallel()

	s, _, seen := newTestServer(t, http.StatusOK, `{"id": 7, "name": "Concierge"}`)
	ctx := context.Background()

	var page mcp.ReadResourceRequest
	page.Params.URI = "assistants://2/5"
	contents, err := s.readAssistantPage(ctx, page)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "pageno=2&pagesize=5", (<-seen).query)

	var detail mcp.ReadResourceRequest
	detail.Params.URI = "assistants://7"
	contents, err = s.readAssistant(ctx, detail)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/agents/7", (<-seen).path)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.JSONEq(t, `{"id": 7, "name": "Concierge"}`, text.Text)

	var bad mcp.ReadResourceRequest
	bad.Params.URI = "assistants://seven"
	_, err = s.readAssistant(ctx, bad)
	require.Error(t, err)
}

func TestMCPServerRegistersTools(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(t, http.StatusOK, `{}`)
	srv := s.MCPServer("test")
	tools := srv.ListTools()
	for _, name := range []string{
		"dispatch_a_call", "create_assistant", "list_assistants", "get_assistant",
		"list_call_logs", "get_call_log", "list_simulations", "start_simulation",
	} {
		_, ok := tools[name]
		assert.True(t, ok, "tool %s not registered", name)
	}
}
