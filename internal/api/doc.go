// Package api provides HTTP client functionality for communicating
// with the RelayHub API. It handles authentication, request/response
// serialization, per-account rate-limit backoff, and automatic retry
// with exponential backoff for transient failures.
//
// # Client Creation
//
// The package provides two ways to create a client:
//
//   - [NewClient]: Struct-based configuration for explicit, type-safe setup.
//   - [New]: Functional options pattern for flexible configuration.
//
// Both require the API DSN and key. The key is sent via the X-API-KEY
// header on every request.
//
// # Retry Behavior
//
// Each request is attempted up to [Config.MaxRetries] times while
// retry is enabled (the default), and exactly once otherwise. Rate
// limit responses (429) feed the per-account limiter and honor
// server-supplied Retry-After / X-RateLimit-Reset deadlines; other
// retryable failures (timeouts, connectivity, 5xx) back off on an
// independent doubling delay capped at 30 seconds.
//
// # Error Handling
//
// Every failure is surfaced as an *apierrors.APIError carrying the
// failure kind, retryability, and request context. See the apierrors
// package for the taxonomy and sentinel errors.
package api
