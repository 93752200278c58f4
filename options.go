package relayhub

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	useHTTP        bool
	timeout        time.Duration
	disableRetry   bool
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	httpClient     *http.Client
	logger         *zap.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithHTTP switches the transport scheme to plain HTTP. Intended for
// local or private deployments only.
func WithHTTP() Option {
	return func(c *clientConfig) {
		c.useHTTP = true
	}
}

// WithTimeout sets the per-attempt request timeout.
// Default: 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetryDisabled limits every call to a single transport attempt.
// Calls inside a rate-limit backoff window then fail immediately with
// a rate-limit error instead of waiting.
func WithRetryDisabled() Option {
	return func(c *clientConfig) {
		c.disableRetry = true
	}
}

// WithMaxRetries sets the total attempt budget per call while retry is
// enabled. Default: 5.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithRetryDelays sets the base and maximum delay for the per-account
// rate-limit backoff. The delay starts at base and doubles per
// consecutive rate-limit error up to max.
// Defaults: 5 minutes and 2 hours.
func WithRetryDelays(base, max time.Duration) Option {
	return func(c *clientConfig) {
		c.retryBaseDelay = base
		c.retryMaxDelay = max
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger that receives the SDK's retry and backoff
// decisions. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
