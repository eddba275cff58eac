package omnidim_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

const testAPIKey = "test-key-0123456789"

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// fakeAPI is an httptest backend that records every request and answers
// with a fixed status and body.
type fakeAPI struct {
	server *httptest.Server
	calls  atomic.Int32

	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{status: status, body: body}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   raw,
		})
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) baseURL() string {
	return f.server.URL + "/api/v1"
}

func (f *fakeAPI) client(t *testing.T) *omnidim.Client {
	t.Helper()
	c, err := omnidim.NewClient(testAPIKey, omnidim.WithBaseURL(f.baseURL()))
	require.NoError(t, err)
	return c
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request recorded")
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) lastJSON(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(f.last(t).Body, &body))
	return body
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}

func TestNewClientRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		apiKey string
		opts   []omnidim.Option
		want   string
	}{
		{name: "empty key", apiKey: "", want: "API key is required"},
		{name: "short key", apiKey: "  abc   ", want: "appears to be invalid"},
		{name: "empty base url", apiKey: testAPIKey, opts: []omnidim.Option{omnidim.WithBaseURL("")}, want: "base URL is required"},
		{name: "slash base url", apiKey: testAPIKey, opts: []omnidim.Option{omnidim.WithBaseURL("/")}, want: "base URL is required"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := omnidim.NewClient(tt.apiKey, tt.opts...)
			var cfgErr *omnidim.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, cfgErr.Message, tt.want)
		})
	}
}

func TestNewClientBuildsEveryService(t *testing.T) {
	t.Parallel()

	c, err := omnidim.NewClient(testAPIKey)
	require.NoError(t, err)
	assert.Equal(t, omnidim.DefaultBaseURL, c.BaseURL())
	assert.NotNil(t, c.Agent)
	assert.NotNil(t, c.Call)
	assert.NotNil(t, c.Integrations)
	assert.NotNil(t, c.KnowledgeBase)
	assert.NotNil(t, c.PhoneNumber)
	assert.NotNil(t, c.Simulation)
}

func TestURLIgnoresTrailingSlash(t *testing.T) {
	t.Parallel()

	withSlash, err := omnidim.NewClient(testAPIKey, omnidim.WithBaseURL("https://x/api/v1/"))
	require.NoError(t, err)
	withoutSlash, err := omnidim.NewClient(testAPIKey, omnidim.WithBaseURL("https://x/api/v1"))
	require.NoError(t, err)

	assert.Equal(t, "https://x/api/v1/agents/42", withSlash.URL("agents/42"))
	assert.Equal(t, withSlash.URL("agents/42"), withoutSlash.URL("agents/42"))
	assert.Equal(t, "https://x/api/v1/agents/42", withoutSlash.URL("/agents/42"))
}

func TestExecuteSendsDefaultHeaders(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `{"ok":true}`)
	resp, err := api.client(t).Get(context.Background(), "agents", map[string]any{"pageno": 2, "skip": nil})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"ok": true}, resp.JSON)

	req := api.last(t)
	assert.Equal(t, "/api/v1/agents", req.Path)
	assert.Equal(t, "pageno=2", req.Query)
	assert.Equal(t, "Bearer "+testAPIKey, req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "omnidim-go/"+omnidim.Version, req.Header.Get("User-Agent"))
	assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
}

func TestExecuteKeepsCallerHeaders(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `{}`)
	_, err := api.client(t).Execute(context.Background(), omnidim.Request{
		Method:   "get",
		Endpoint: "agents",
		Headers:  map[string]string{"authorization": "Bearer other", "X-Trace": "abc"},
	})
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, []string{"Bearer other"}, req.Header.Values("Authorization"))
	assert.Equal(t, "abc", req.Header.Get("X-Trace"))
}

func TestExecuteRejectsUnsupportedMethod(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `{}`)
	_, err := api.client(t).Execute(context.Background(), omnidim.Request{Method: "PATCH", Endpoint: "agents/1"})

	var verr *omnidim.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "method", verr.Field)
	assert.Zero(t, api.calls.Load())
}

func TestExecuteRejectsUnserializableBody(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `{}`)
	_, err := api.client(t).Post(context.Background(), "agents/create", map[string]any{"fn": func() {}})

	var verr *omnidim.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "body", verr.Field)
	assert.Zero(t, api.calls.Load())
}

func TestExecuteNormalizesErrorBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "error field", status: 404, body: `{"error": "not found"}`, message: "not found"},
		{name: "error description wins", status: 400, body: `{"error": "bad", "error_description": "name is missing"}`, message: "name is missing"},
		{name: "non string error", status: 422, body: `{"error": {"name": ["required"]}}`, message: `{"name":["required"]}`},
		{name: "plain text body", status: 500, body: `upstream exploded`, message: "500 Server Error: Internal Server Error for url: "},
		{name: "object without error", status: 403, body: `{"detail": "nope"}`, message: "403 Client Error: Forbidden for url: "},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI(t, tt.status, tt.body)
			_, err := api.client(t).Agent.Get(context.Background(), 999)

			var apiErr *omnidim.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.True(t, strings.HasPrefix(apiErr.Message, tt.message), "message %q", apiErr.Message)
			assert.False(t, apiErr.IsNetworkError())
		})
	}
}

func TestExecuteNotFoundMessage(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusNotFound, `{"error": "not found"}`)
	_, err := api.client(t).Agent.Get(context.Background(), 999)

	var apiErr *omnidim.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "not found", apiErr.Message)
	assert.Equal(t, map[string]any{"error": "not found"}, apiErr.Response)
	assert.Equal(t, "API Error (404): not found", apiErr.Error())
	assert.Equal(t, "/api/v1/agents/999", api.last(t).Path)
}

func TestExecuteConnectionErrorHasStatusZero(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, dialErr
	})}
	c, err := omnidim.NewClient(testAPIKey, omnidim.WithBaseURL("http://omnidim.invalid/api/v1"), omnidim.WithHTTPClient(hc))
	require.NoError(t, err)

	_, err = c.Agent.List(context.Background(), 1, 30)

	var apiErr *omnidim.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.True(t, apiErr.IsNetworkError())
	assert.Contains(t, apiErr.Message, "Network error")
	assert.ErrorIs(t, err, dialErr)
}

func TestExecuteClosedServerHasStatusZero(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c, err := omnidim.NewClient(testAPIKey, omnidim.WithBaseURL(baseURL))
	require.NoError(t, err)
	_, err = c.Simulation.List(context.Background(), 0, 0)

	var apiErr *omnidim.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestDeleteAlwaysReturnsEmptyObject(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `{"deleted": true, "id": 3}`)
	resp, err := api.client(t).Agent.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, map[string]any{}, resp.JSON)
	assert.Equal(t, http.MethodDelete, api.last(t).Method)
}

func TestEmptySuccessBodyIsEmptyObject(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, ``)
	resp, err := api.client(t).Simulation.Stop(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, resp.JSON)
	assert.Empty(t, api.last(t).Body)
}

func TestNonJSONSuccessBodyIsAPIError(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `<html>`)
	_, err := api.client(t).Agent.List(context.Background(), 1, 30)

	var apiErr *omnidim.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestResponseHelpers(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, http.StatusOK, `{"id": 7, "name": "Ada"}`)
	resp, err := api.client(t).Agent.Get(context.Background(), 7)
	require.NoError(t, err)

	id, ok := resp.Field("id")
	require.True(t, ok)
	assert.Equal(t, float64(7), id)

	var agent struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, resp.Decode(&agent))
	assert.Equal(t, 7, agent.ID)
	assert.Equal(t, "Ada", agent.Name)
}
