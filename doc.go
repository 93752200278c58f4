// Package relayhub provides a Go client SDK for RelayHub, an
// aggregation API unifying email, chat messaging, and LinkedIn under
// one REST surface.
//
// The SDK is a typed pass-through: service methods map onto HTTP
// requests against your RelayHub deployment, while the client manages
// per-account rate-limit backoff and retry transparently.
//
// Basic usage:
//
//	client, err := relayhub.New("api3.relayhub.io:13443", "your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	accounts, err := client.Accounts.List(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chats, err := client.Messaging.ListChats(ctx, &relayhub.ListChatsOptions{
//	    AccountID: accounts.Items[0].ID,
//	})
//
// Failures are surfaced as *relayhub.APIError values carrying the
// failure kind, retryability, and request context; sentinel errors
// such as [ErrRateLimited] and [ErrAccountNotFound] work with
// errors.Is.
package relayhub
