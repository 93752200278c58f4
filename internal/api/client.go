package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/relayhub/client-go/internal/apierrors"
	"github.com/relayhub/client-go/internal/ratelimit"
)

// Default configuration values.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 5
	DefaultRetryBaseDelay = 5 * time.Minute
	DefaultRetryMaxDelay  = 2 * time.Hour
)

// Config configures the API client.
type Config struct {
	// DSN is the host (and optional port) of the RelayHub deployment,
	// e.g. "api3.relayhub.io:13443". Required.
	DSN string
	// APIKey authenticates every request. Required.
	APIKey string
	// UseHTTP switches the scheme from https to http.
	UseHTTP bool
	// Timeout bounds each transport attempt. Default 30s.
	Timeout time.Duration
	// DisableRetry limits every call to a single transport attempt.
	DisableRetry bool
	// MaxRetries is the total attempt budget while retry is enabled.
	// Default 5.
	MaxRetries int
	// RetryBaseDelay seeds the per-account rate-limit backoff. Default 5m.
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps the per-account rate-limit backoff. Default 2h.
	RetryMaxDelay time.Duration
	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
	// Logger receives retry/backoff decisions. Default is a no-op logger.
	Logger *zap.Logger
}

// Client dispatches requests against the RelayHub API. It is safe for
// concurrent use; all request outcomes feed the shared per-account
// rate limiter, so concurrent calls for one account observe each
// other's backoff state.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	retry      bool
	maxRetries int
	limiter    *ratelimit.Limiter
	logger     *zap.Logger

	attemptBaseDelay time.Duration
	attemptMaxDelay  time.Duration
}

// Option configures the API client.
type Option func(*Config)

// WithHTTP switches the transport scheme to plain HTTP.
func WithHTTP() Option {
	return func(c *Config) {
		c.UseHTTP = true
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRetryDisabled limits every call to a single transport attempt.
func WithRetryDisabled() Option {
	return func(c *Config) {
		c.DisableRetry = true
	}
}

// WithMaxRetries sets the total attempt budget.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryDelays sets the base and maximum per-account backoff delays.
func WithRetryDelays(base, max time.Duration) Option {
	return func(c *Config) {
		c.RetryBaseDelay = base
		c.RetryMaxDelay = max
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets the logger for retry/backoff decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// New creates an API client using functional options.
func New(dsn, apiKey string, opts ...Option) (*Client, error) {
	cfg := Config{DSN: dsn, APIKey: apiKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClient(cfg)
}

// NewClient creates an API client from explicit configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("DSN is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	scheme := "https"
	if cfg.UseHTTP {
		scheme = "http"
	}

	return &Client{
		baseURL:          scheme + "://" + cfg.DSN,
		apiKey:           cfg.APIKey,
		httpClient:       cfg.HTTPClient,
		timeout:          cfg.Timeout,
		retry:            !cfg.DisableRetry,
		maxRetries:       cfg.MaxRetries,
		limiter:          ratelimit.NewLimiter(cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		logger:           cfg.Logger,
		attemptBaseDelay: defaultAttemptBaseDelay,
		attemptMaxDelay:  defaultAttemptMaxDelay,
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Limiter returns the shared per-account rate limiter for
// administrative use.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Response is the envelope returned for a successful call.
type Response struct {
	StatusCode int
	Headers    http.Header
	// Body is the raw response body. Empty for 204 responses. JSON
	// bodies are additionally decoded into the caller's result value.
	Body []byte
}

// Text returns the body as a string, for non-JSON responses.
func (r *Response) Text() string {
	return string(r.Body)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query *Query, result any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodGet, path, query, nil, opts), result)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodPost, path, nil, body, opts), result)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodPut, path, nil, body, opts), result)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, result any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodPatch, path, nil, body, opts), result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, buildRequest(http.MethodDelete, path, nil, nil, opts), result)
}

func buildRequest(method, path string, query *Query, body any, opts []RequestOption) *Request {
	req := &Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// Do performs one logical API call: it honors the account's rate-limit
// state, attempts the transport call up to the retry budget, and
// returns the response envelope or a typed error. JSON responses are
// decoded into result when it is non-nil.
func (c *Client) Do(ctx context.Context, req *Request, result any) (*Response, error) {
	if wait := c.limiter.ShouldWait(req.AccountID); wait > 0 {
		if !c.retry {
			return nil, &apierrors.APIError{
				Kind:      apierrors.KindRateLimit,
				Message:   "rate limit in effect",
				Retryable: true,
				URL:       c.baseURL + req.Path,
				Method:    req.Method,
				AccountID: req.AccountID,
				ResetAt:   time.Now().Add(wait),
			}
		}
		c.logger.Debug("waiting for rate limit",
			zap.String("account", req.AccountID),
			zap.Duration("wait", wait))
		if err := sleep(ctx, wait); err != nil {
			return nil, c.annotate(apierrors.FromTransport(err), req, 0)
		}
	}

	attempts := 1
	if c.retry {
		attempts = c.maxRetries
	}

	var lastErr *apierrors.APIError
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.attempt(ctx, req, result, attempt)
		if err == nil {
			c.limiter.RecordSuccess(req.AccountID)
			return resp, nil
		}

		apiErr := c.annotate(apierrors.FromTransport(err), req, attempt)
		lastErr = apiErr

		if !apiErr.Retryable || attempt == attempts {
			return nil, apiErr
		}

		var delay time.Duration
		if apiErr.Kind == apierrors.KindRateLimit {
			c.limiter.RecordRateLimitError(req.AccountID, apiErr.ResetAt)
			delay = apiErr.RetryAfter()
			if delay <= 0 {
				delay = c.limiter.CurrentBackoff(req.AccountID)
			}
			c.logger.Warn("rate limited",
				zap.String("account", req.AccountID),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay))
		} else {
			delay = c.attemptDelay(attempt)
			c.logger.Debug("retrying request",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.String("kind", string(apiErr.Kind)),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
		}

		if err := sleep(ctx, delay); err != nil {
			return nil, c.annotate(apierrors.FromTransport(err), req, attempt)
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	// Not reachable with a positive attempt budget.
	return nil, c.annotate(&apierrors.APIError{
		Kind:    apierrors.KindUnknown,
		Message: "request failed",
	}, req, attempts)
}

// attempt performs a single transport call bounded by the per-call or
// client-level timeout.
func (c *Client) attempt(ctx context.Context, req *Request, result any, attempt int) (*Response, error) {
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullURL := c.baseURL + req.Path
	if !req.Query.Empty() {
		fullURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &apierrors.APIError{
				Kind:    apierrors.KindValidation,
				Message: fmt.Sprintf("encode request body: %v", err),
				Err:     err,
			}
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, &apierrors.APIError{
			Kind:    apierrors.KindValidation,
			Message: fmt.Sprintf("build request: %v", err),
			Err:     err,
		}
	}

	httpReq.Header.Set("X-API-KEY", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		apiErr := apierrors.FromStatus(resp.StatusCode, body)
		if apiErr.Kind == apierrors.KindRateLimit {
			if resetAt, ok := ratelimit.ParseResetHeaders(resp.Header); ok {
				apiErr.ResetAt = resetAt
			}
		}
		return nil, apiErr
	}

	envelope := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	if resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return envelope, nil
	}

	if result != nil && isJSONContent(resp.Header.Get("Content-Type")) {
		if err := json.Unmarshal(body, result); err != nil {
			return nil, &apierrors.APIError{
				Kind:    apierrors.KindUnknown,
				Message: fmt.Sprintf("decode response: %v", err),
				Err:     err,
			}
		}
	}

	return envelope, nil
}

// annotate fills in request context on an error without clobbering
// values already set by the attempt.
func (c *Client) annotate(e *apierrors.APIError, req *Request, attempt int) *apierrors.APIError {
	if e.URL == "" {
		e.URL = c.baseURL + req.Path
	}
	if e.Method == "" {
		e.Method = req.Method
	}
	if e.AccountID == "" {
		e.AccountID = req.AccountID
	}
	if e.Attempt == 0 {
		e.Attempt = attempt
	}
	return e
}

func isJSONContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
