// Package client is a thin HTTP client for the flows collection resource.
package client

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

	"github.com/dukex/docflow/pkg/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 64 << 10

// ExecutionResult is the opaque payload returned by the execute endpoint.
type ExecutionResult json.RawMessage

// MarshalJSON returns the raw payload.
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	return r, nil
}

// Client talks to the flows API. Every call is issued once: no retries, no batching.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrBaseURLRequired
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// List returns every flow.
func (c *Client) List(ctx context.Context) ([]models.Flow, error) {
	var flows []models.Flow

	err := c.do(ctx, "list", http.MethodGet, "/flows", nil, &flows)
	if err != nil {
		return nil, err
	}

	if flows == nil {
		flows = []models.Flow{}
	}

	return flows, nil
}

// Get returns a single flow.
func (c *Client) Get(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow

	err := c.do(ctx, "get", http.MethodGet, flowPath(id), nil, &flow)
	if err != nil {
		return nil, err
	}

	return &flow, nil
}

// Create submits flow, including its client-assigned ids, and returns the server's copy.
// The returned flow is authoritative; its id may differ from the submitted one.
func (c *Client) Create(ctx context.Context, flow models.Flow) (*models.Flow, error) {
	var created models.Flow

	err := c.do(ctx, "create", http.MethodPost, "/flows", flow, &created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Update replaces the flow stored under id. The response body is ignored.
func (c *Client) Update(ctx context.Context, id string, flow models.Flow) error {
	return c.do(ctx, "update", http.MethodPut, flowPath(id), flow, nil)
}

// Delete removes the flow stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, flowPath(id), nil, nil)
}

// Execute asks the server to run the flow and returns its raw response.
func (c *Client) Execute(ctx context.Context, id string) (ExecutionResult, error) {
	var raw json.RawMessage

	err := c.do(ctx, "execute", http.MethodPost, flowPath(id)+"/execute", nil, &raw)
	if err != nil {
		return nil, err
	}

	return ExecutionResult(raw), nil
}

func flowPath(id string) string {
	return "/flows/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	target := c.baseURL.JoinPath(path).String()
	fetchErr := func(err error) *FetchError {
		return &FetchError{Op: op, Method: method, URL: target, Err: err}
	}

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fetchErr(fmt.Errorf("failed to encode request: %w", err))
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fetchErr(err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.DebugContext(ctx, "Calling flows API", "op", op, "method", method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fetchErr(err)
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.WarnContext(ctx, "Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		detail := errorDetail(raw)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}

		return &FetchError{
			Op:         op,
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Detail:     detail,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fetchErr(fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

// errorDetail extracts a message from problem+json, FastAPI-style or {"message"} bodies.
func errorDetail(raw []byte) string {
	var body struct {
		Detail  any    `json:"detail"`
		Title   string `json:"title"`
		Message string `json:"message"`
	}

	if json.Unmarshal(raw, &body) != nil {
		return ""
	}

	if detail, ok := body.Detail.(string); ok && detail != "" {
		return detail
	}

	if body.Message != "" {
		return body.Message
	}

	return body.Title
}
