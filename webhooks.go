package relayhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/relayhub/client-go/internal/api"
	"github.com/relayhub/client-go/internal/apierrors"
)

// WebhookService manages webhook subscriptions. Webhooks fire for
// events across all connected accounts; signature verification of
// incoming deliveries is out of the SDK's scope.
type WebhookService struct {
	client *api.Client
}

// WebhookHeader is an extra header RelayHub attaches to webhook
// deliveries.
type WebhookHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Webhook is a registered webhook subscription.
type Webhook struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	RequestURL string          `json:"request_url"`
	Events     []string        `json:"events,omitempty"`
	Headers    []WebhookHeader `json:"headers,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// List returns all registered webhooks.
func (s *WebhookService) List(ctx context.Context) ([]Webhook, error) {
	var out struct {
		Items []Webhook `json:"items"`
	}
	if _, err := s.client.Get(ctx, "/api/v1/webhooks", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateWebhookRequest is the payload for Create. Source selects the
// event stream ("messaging", "email", "account_status"); Events
// optionally narrows it and is omitted when empty.
type CreateWebhookRequest struct {
	Source     string          `json:"source"`
	RequestURL string          `json:"request_url"`
	Events     []string        `json:"events,omitempty"`
	Headers    []WebhookHeader `json:"headers,omitempty"`
}

// Create registers a webhook subscription.
func (s *WebhookService) Create(ctx context.Context, req *CreateWebhookRequest) (*Webhook, error) {
	if req == nil || req.RequestURL == "" {
		return nil, &APIError{
			Kind:    KindValidation,
			Message: "RequestURL is required",
		}
	}

	var out Webhook
	if _, err := s.client.Post(ctx, "/api/v1/webhooks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a webhook subscription.
func (s *WebhookService) Delete(ctx context.Context, webhookID string) error {
	path := fmt.Sprintf("/api/v1/webhooks/%s", url.PathEscape(webhookID))

	if _, err := s.client.Delete(ctx, path, nil); err != nil {
		return apierrors.WithResource(err, apierrors.ResourceWebhook, webhookID)
	}
	return nil
}
