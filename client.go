package omnidim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryu-ryuk/omnidim-go/internal/httpheaders"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://backend.omnidim.io/api/v1"

	// Version is the SDK version reported in the User-Agent header.
	Version = "0.3.0"

	minAPIKeyLength = 8
	defaultTimeout  = 30 * time.Second
)

// Client sends authenticated requests to the OmniDimension API. It is
// immutable after construction and safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger

	Agent         *AgentService
	Call          *CallService
	Integrations  *IntegrationsService
	KnowledgeBase *KnowledgeBaseService
	PhoneNumber   *PhoneNumberService
	Simulation    *SimulationService
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// It has no effect when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient validates the credentials and returns a ready Client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{Message: "API key is required"}
	}
	if len(strings.TrimSpace(apiKey)) < minAPIKeyLength {
		return nil, &ConfigurationError{Message: "API key appears to be invalid, please check your credentials"}
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		timeout:   defaultTimeout,
		userAgent: "omnidim-go/" + Version,
	}
	for _, opt := range opts {
		opt(c)
	}

	if strings.TrimSpace(c.baseURL) == "" {
		return nil, &ConfigurationError{Message: "base URL is required"}
	}
	c.baseURL = strings.TrimSuffix(c.baseURL, "/")
	if c.baseURL == "" {
		return nil, &ConfigurationError{Message: "base URL is required"}
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	c.Agent = &AgentService{client: c}
	c.Call = &CallService{client: c}
	c.Integrations = &IntegrationsService{client: c}
	c.KnowledgeBase = &KnowledgeBaseService{client: c}
	c.PhoneNumber = &PhoneNumberService{client: c}
	c.Simulation = &SimulationService{client: c}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins endpoint onto the base URL with a single separator.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Request describes a single API call.
type Request struct {
	Method   string
	Endpoint string
	// Query values are formatted with fmt; nil values are dropped.
	Query map[string]any
	// Body is JSON-encoded when non-nil.
	Body any
	// Headers override the defaults, matched case-insensitively.
	Headers map[string]string
}

// Execute sends req and returns the decoded response envelope. Non-2xx
// responses and transport failures are returned as *APIError. Nothing is
// retried.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, validationErrorf("method", "unsupported HTTP method %q", req.Method)
	}

	fullURL := c.URL(req.Endpoint)
	if q := encodeQuery(req.Query); q != "" {
		fullURL += "?" + q
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, validationErrorf("body", "not JSON serializable: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, &APIError{Message: "Network error: " + err.Error(), Err: err}
	}
	headers := httpheaders.WithDefaults(req.Headers, c.defaultHeaders())
	httpheaders.Apply(httpReq.Header, headers)
	requestID, _ := httpheaders.Lookup(headers, "X-Request-Id")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.DebugContext(ctx, "omnidim request failed",
			"method", method, "url", fullURL, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return nil, &APIError{Message: "Network error: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: "Network error: reading response: " + err.Error(), Err: err}
	}
	c.logger.DebugContext(ctx, "omnidim request",
		"method", method, "url", fullURL, "request_id", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp.StatusCode, fullURL, data)
	}

	out := &Response{Status: resp.StatusCode, JSON: map[string]any{}}
	if method == http.MethodDelete || len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "decoding response body: " + err.Error(),
			Err:        err,
		}
	}
	if parsed != nil {
		out.JSON = parsed
	}
	return out, nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, query map[string]any) (*Response, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Query: query})
}

// Post sends a POST request with data as the JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data any) (*Response, error) {
	return c.Execute(ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Body: data})
}

// Put sends a PUT request with data as the JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, data any) (*Response, error) {
	return c.Execute(ctx, Request{Method: http.MethodPut, Endpoint: endpoint, Body: data})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.Execute(ctx, Request{Method: http.MethodDelete, Endpoint: endpoint})
}

func (c *Client) defaultHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"User-Agent":    c.userAgent,
		"X-Request-Id":  uuid.NewString(),
	}
}

func encodeQuery(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	for key, value := range query {
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprint(value))
	}
	return values.Encode()
}

func newHTTPError(status int, fullURL string, body []byte) *APIError {
	kind := "Server Error"
	if status < 500 {
		kind = "Client Error"
	}
	apiErr := &APIError{
		StatusCode: status,
		Message:    fmt.Sprintf("%d %s: %s for url: %s", status, kind, http.StatusText(status), fullURL),
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return apiErr
	}
	apiErr.Response = payload
	for _, key := range []string{"error_description", "error"} {
		if v, ok := payload[key]; ok && v != nil {
			apiErr.Message = stringify(v)
			break
		}
	}
	return apiErr
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
