package relayhub

import (
	"time"

	"github.com/relayhub/client-go/internal/api"
)

// Client is the main RelayHub client. It is safe for concurrent use;
// all service calls share one dispatcher and one per-account rate
// limiter, so concurrent calls for the same account observe each
// other's backoff state.
type Client struct {
	api *api.Client

	// Accounts manages connected provider accounts.
	Accounts *AccountService
	// Emails accesses mail across connected accounts.
	Emails *EmailService
	// Messaging accesses chats and messages across connected accounts.
	Messaging *MessagingService
	// LinkedIn exposes LinkedIn-specific operations.
	LinkedIn *LinkedInService
	// Webhooks manages webhook subscriptions.
	Webhooks *WebhookService
}

// New creates a RelayHub client for the deployment at dsn,
// authenticating with apiKey. Construction fails synchronously when
// the configuration is incomplete; no network activity happens here.
func New(dsn, apiKey string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := api.NewClient(api.Config{
		DSN:            dsn,
		APIKey:         apiKey,
		UseHTTP:        cfg.useHTTP,
		Timeout:        cfg.timeout,
		DisableRetry:   cfg.disableRetry,
		MaxRetries:     cfg.maxRetries,
		RetryBaseDelay: cfg.retryBaseDelay,
		RetryMaxDelay:  cfg.retryMaxDelay,
		HTTPClient:     cfg.httpClient,
		Logger:         cfg.logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:       apiClient,
		Accounts:  &AccountService{client: apiClient},
		Emails:    &EmailService{client: apiClient},
		Messaging: &MessagingService{client: apiClient},
		LinkedIn:  &LinkedInService{client: apiClient},
		Webhooks:  &WebhookService{client: apiClient},
	}, nil
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

// ResetRateLimit discards the rate-limit state for one account. The
// account behaves as brand new on its next request. Pass an empty id
// to reset the global bucket.
func (c *Client) ResetRateLimit(accountID string) {
	c.api.Limiter().Reset(accountID)
}

// ResetAllRateLimits discards the rate-limit state for every tracked
// account.
func (c *Client) ResetAllRateLimits() {
	c.api.Limiter().ResetAll()
}

// RateLimitBackoff returns the account's current backoff delay.
func (c *Client) RateLimitBackoff(accountID string) time.Duration {
	return c.api.Limiter().CurrentBackoff(accountID)
}

// RateLimitErrors returns the account's consecutive rate-limit error
// count. It drops back to zero on the next successful request.
func (c *Client) RateLimitErrors(accountID string) int {
	return c.api.Limiter().ConsecutiveErrors(accountID)
}
