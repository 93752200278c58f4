package relayhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/relayhub/client-go/internal/api"
	"github.com/relayhub/client-go/internal/apierrors"
)

// LinkedInService exposes LinkedIn-specific operations on a connected
// LinkedIn account.
type LinkedInService struct {
	client *api.Client
}

// Profile is a LinkedIn profile.
type Profile struct {
	ProviderID       string `json:"provider_id"`
	PublicIdentifier string `json:"public_identifier"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Headline         string `json:"headline"`
	NetworkDistance  string `json:"network_distance,omitempty"`
}

// Invitation is a sent connection invitation.
type Invitation struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	Message    string    `json:"message,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// InvitationList is one page of invitations.
type InvitationList struct {
	Items  []Invitation `json:"items"`
	Cursor string       `json:"cursor"`
}

// GetOwnProfile returns the profile of the connected account's owner.
func (s *LinkedInService) GetOwnProfile(ctx context.Context, accountID string) (*Profile, error) {
	q := api.NewQuery().Set("account_id", accountID)

	var out Profile
	if _, err := s.client.Get(ctx, "/api/v1/users/me", q, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return &out, nil
}

// GetProfile returns a profile by public identifier or provider id.
func (s *LinkedInService) GetProfile(ctx context.Context, accountID, identifier string) (*Profile, error) {
	path := fmt.Sprintf("/api/v1/users/%s", url.PathEscape(identifier))
	q := api.NewQuery().Set("account_id", accountID)

	var out Profile
	if _, err := s.client.Get(ctx, path, q, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceProfile, identifier)
	}
	return &out, nil
}

// sendInvitationRequest is the invitation payload. The message is
// omitted when empty; LinkedIn treats that as a bare invitation.
type sendInvitationRequest struct {
	AccountID  string `json:"account_id"`
	ProviderID string `json:"provider_id"`
	Message    string `json:"message,omitempty"`
}

// SendInvitation sends a connection invitation to the profile with
// the given provider id.
func (s *LinkedInService) SendInvitation(ctx context.Context, accountID, providerID, message string) (*Invitation, error) {
	body := sendInvitationRequest{
		AccountID:  accountID,
		ProviderID: providerID,
		Message:    message,
	}

	var out Invitation
	if _, err := s.client.Post(ctx, "/api/v1/users/invite", body, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceProfile, providerID)
	}
	return &out, nil
}

// ListInvitationsOptions control invitation listing.
type ListInvitationsOptions struct {
	Cursor string
	Limit  int
}

// ListInvitations returns a page of the account's sent invitations.
func (s *LinkedInService) ListInvitations(ctx context.Context, accountID string, opts *ListInvitationsOptions) (*InvitationList, error) {
	q := api.NewQuery().Set("account_id", accountID)
	if opts != nil {
		if opts.Cursor != "" {
			q.Set("cursor", opts.Cursor)
		}
		if opts.Limit > 0 {
			q.SetInt("limit", opts.Limit)
		}
	}

	var out InvitationList
	if _, err := s.client.Get(ctx, "/api/v1/users/invite/sent", q, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return &out, nil
}
