package relayhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/relayhub/client-go/internal/api"
	"github.com/relayhub/client-go/internal/apierrors"
)

// AccountService manages the provider accounts connected to a
// RelayHub deployment.
type AccountService struct {
	client *api.Client
}

// Account is a connected provider account.
type Account struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountList is one page of accounts.
type AccountList struct {
	Items  []Account `json:"items"`
	Cursor string    `json:"cursor"`
}

// ListAccountsOptions control account listing. Zero values are omitted
// from the request.
type ListAccountsOptions struct {
	Cursor string
	Limit  int
}

// List returns a page of connected accounts.
func (s *AccountService) List(ctx context.Context, opts *ListAccountsOptions) (*AccountList, error) {
	q := api.NewQuery()
	if opts != nil {
		if opts.Cursor != "" {
			q.Set("cursor", opts.Cursor)
		}
		if opts.Limit > 0 {
			q.SetInt("limit", opts.Limit)
		}
	}

	var out AccountList
	if _, err := s.client.Get(ctx, "/api/v1/accounts", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one account by id.
func (s *AccountService) Get(ctx context.Context, accountID string) (*Account, error) {
	path := fmt.Sprintf("/api/v1/accounts/%s", url.PathEscape(accountID))

	var out Account
	if _, err := s.client.Get(ctx, path, nil, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return &out, nil
}

// Delete disconnects and removes an account.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	path := fmt.Sprintf("/api/v1/accounts/%s", url.PathEscape(accountID))

	if _, err := s.client.Delete(ctx, path, nil, api.WithAccount(accountID)); err != nil {
		return apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return nil
}

// Resync asks the provider to re-synchronize the account's data.
func (s *AccountService) Resync(ctx context.Context, accountID string) (*Account, error) {
	path := fmt.Sprintf("/api/v1/accounts/%s/resync", url.PathEscape(accountID))

	var out Account
	if _, err := s.client.Post(ctx, path, nil, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return &out, nil
}

// solveCheckpointRequest is the checkpoint resolution payload.
type solveCheckpointRequest struct {
	AccountID string `json:"account_id"`
	Code      string `json:"code"`
}

// SolveCheckpoint submits a verification code (OTP, 2FA) for an
// account stuck on a provider checkpoint.
func (s *AccountService) SolveCheckpoint(ctx context.Context, accountID, code string) (*Account, error) {
	body := solveCheckpointRequest{
		AccountID: accountID,
		Code:      code,
	}

	var out Account
	if _, err := s.client.Post(ctx, "/api/v1/accounts/checkpoint", body, &out, api.WithAccount(accountID)); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceAccount, accountID)
	}
	return &out, nil
}
