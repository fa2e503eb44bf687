package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"upstox-mcp/internal/logger"
)

// Client represents an HTTP client with common configuration and utilities
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	useLogging bool
}

// ClientOption configures the API client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL sets the base URL for all requests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader sets a default header for all requests
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogging enables request/response logging for the client
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.useLogging = enabled
	}
}

// NewClient creates a new API client with the given options
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Request represents an HTTP request configuration
type Request struct {
	Method  string
	URL     string
	Body    any        // JSON encoded when set
	Form    url.Values // form encoded when set; takes precedence over Body
	Headers map[string]string
	ctx     context.Context
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// NewRequest creates a new request
func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

// WithContext sets the context for the request
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// WithBody sets the request body (will be JSON encoded)
func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

// WithForm sets a form-encoded request body
func (r *Request) WithForm(form url.Values) *Request {
	r.Form = form
	return r
}

// WithHeader sets a request-specific header
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// StatusError is returned for responses with a 4xx/5xx status; the body is
// kept so callers can surface upstream detail.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Do executes the HTTP request
func (c *Client) Do(req *Request) (*Response, error) {
	fullURL := req.URL
	if c.baseURL != "" {
		fullURL = c.baseURL + req.URL
	}

	var bodyReader io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		bodyReader = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.useLogging {
		logger.Debug(req.ctx, "HTTP request", "method", req.Method, "url", fullURL)
	}

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.useLogging {
			logger.ErrorWithErr(req.ctx, "HTTP request failed", err, "method", req.Method, "url", fullURL)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.useLogging {
		logger.Debug(req.ctx, "HTTP response",
			"method", req.Method,
			"url", fullURL,
			"status", httpResp.StatusCode,
			"duration", time.Since(startTime),
			"bodySize", len(body))
	}

	if httpResp.StatusCode >= 400 {
		if c.useLogging {
			logger.Warn(req.ctx, "HTTP error response",
				"method", req.Method,
				"url", fullURL,
				"status", httpResp.StatusCode,
				"body", string(body))
		}
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// GET performs a GET request
func (c *Client) GET(ctx context.Context, url string, headers ...map[string]string) (*Response, error) {
	req := NewRequest(http.MethodGet, url).WithContext(ctx)
	applyHeaders(req, headers)
	return c.Do(req)
}

// POST performs a POST request with a JSON body
func (c *Client) POST(ctx context.Context, url string, body any, headers ...map[string]string) (*Response, error) {
	req := NewRequest(http.MethodPost, url).
		WithContext(ctx).
		WithBody(body)
	applyHeaders(req, headers)
	return c.Do(req)
}

// POSTForm performs a POST request with a form-encoded body
func (c *Client) POSTForm(ctx context.Context, url string, form url.Values, headers ...map[string]string) (*Response, error) {
	req := NewRequest(http.MethodPost, url).
		WithContext(ctx).
		WithForm(form)
	applyHeaders(req, headers)
	return c.Do(req)
}

func applyHeaders(req *Request, headers []map[string]string) {
	if len(headers) > 0 {
		for key, value := range headers[0] {
			req.WithHeader(key, value)
		}
	}
}

// ParseJSON parses the response body as JSON into the given struct
func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// String returns the response body as a string
func (r *Response) String() string {
	return string(r.Body)
}

// RetryConfig configures retry behavior for transient failures
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     5 * time.Second,
	}
}

// DoWithRetry executes a request, retrying transport-level failures with
// exponential backoff. HTTP error statuses are not retried; the upstream
// already answered.
func (c *Client) DoWithRetry(req *Request, config *RetryConfig) (*Response, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	waitTime := config.InitialWait

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		resp, err := c.Do(req)
		if err == nil {
			return resp, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		lastErr = err
		if c.useLogging {
			logger.Warn(req.ctx, "Request failed, retrying", "attempt", attempt, "error", err, "waitTime", waitTime)
		}

		if attempt < config.MaxAttempts {
			time.Sleep(waitTime)
			waitTime *= 2
			if waitTime > config.MaxWait {
				waitTime = config.MaxWait
			}
		}
	}

	return nil, fmt.Errorf("all %d retry attempts failed: %w", config.MaxAttempts, lastErr)
}
