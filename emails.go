package relayhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/relayhub/client-go/internal/api"
	"github.com/relayhub/client-go/internal/apierrors"
)

// EmailService accesses mail across connected accounts.
type EmailService struct {
	client *api.Client
}

// EmailAddress is a display name plus address pair.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Email is a message in a mail folder.
type Email struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"`
	Folder    string         `json:"folder"`
	Subject   string         `json:"subject"`
	From      EmailAddress   `json:"from"`
	To        []EmailAddress `json:"to"`
	Cc        []EmailAddress `json:"cc,omitempty"`
	Date      time.Time      `json:"date"`
	Body      string         `json:"body"`
	IsRead    bool           `json:"is_read"`
}

// EmailList is one page of emails.
type EmailList struct {
	Items  []Email `json:"items"`
	Cursor string  `json:"cursor"`
}

// Folder is a mail folder on a connected account.
type Folder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Unread int    `json:"unread"`
}

// ListEmailsOptions control email listing. AccountID is required;
// zero-valued options are omitted from the request.
type ListEmailsOptions struct {
	AccountID string
	Folder    string
	Unread    *bool
	Cursor    string
	Limit     int
}

// List returns a page of emails for an account.
func (s *EmailService) List(ctx context.Context, opts *ListEmailsOptions) (*EmailList, error) {
	if opts == nil || opts.AccountID == "" {
		return nil, &APIError{
			Kind:    KindValidation,
			Message: "AccountID is required",
		}
	}

	q := api.NewQuery().Set("account_id", opts.AccountID)
	if opts.Folder != "" {
		q.Set("folder", opts.Folder)
	}
	q.SetBoolOpt("unread", opts.Unread)
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	if opts.Limit > 0 {
		q.SetInt("limit", opts.Limit)
	}

	var out EmailList
	if _, err := s.client.Get(ctx, "/api/v1/emails", q, &out, api.WithAccount(opts.AccountID)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one email by id.
func (s *EmailService) Get(ctx context.Context, accountID, emailID string) (*Email, error) {
	path := fmt.Sprintf("/api/v1/emails/%s", url.PathEscape(emailID))
	q := api.NewQuery().Set("account_id", accountID)

	var out Email
	if _, err := s.client.Get(ctx, path, q, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceEmail, emailID)
	}
	return &out, nil
}

// SendEmailRequest is the payload for Send. Optional fields are
// omitted from the request body when unset.
type SendEmailRequest struct {
	AccountID string         `json:"account_id"`
	To        []EmailAddress `json:"to"`
	Cc        []EmailAddress `json:"cc,omitempty"`
	Bcc       []EmailAddress `json:"bcc,omitempty"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	// Tracking enables open tracking when the provider supports it.
	Tracking *bool `json:"tracking,omitempty"`
}

// SentEmail identifies an email accepted for delivery.
type SentEmail struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id,omitempty"`
}

// Send submits an email for delivery through a connected account.
func (s *EmailService) Send(ctx context.Context, req *SendEmailRequest) (*SentEmail, error) {
	if req == nil || req.AccountID == "" {
		return nil, &APIError{
			Kind:    KindValidation,
			Message: "AccountID is required",
		}
	}

	var out SentEmail
	if _, err := s.client.Post(ctx, "/api/v1/emails", req, &out, api.WithAccount(req.AccountID)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an email from its folder.
func (s *EmailService) Delete(ctx context.Context, accountID, emailID string) error {
	path := fmt.Sprintf("/api/v1/emails/%s", url.PathEscape(emailID))

	if _, err := s.client.Delete(ctx, path, nil, api.WithAccount(accountID)); err != nil {
		return apierrors.WithResource(err, apierrors.ResourceEmail, emailID)
	}
	return nil
}

// ListFolders returns the mail folders of an account.
func (s *EmailService) ListFolders(ctx context.Context, accountID string) ([]Folder, error) {
	q := api.NewQuery().Set("account_id", accountID)

	var out struct {
		Items []Folder `json:"items"`
	}
	if _, err := s.client.Get(ctx, "/api/v1/folders", q, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return out.Items, nil
}
