// Package apierrors provides the shared typed-error taxonomy for the
// RelayHub client. Every failure surfaced by the SDK is an *APIError
// with a fixed Kind and retryability; raw transport errors never leak
// to callers.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrUnauthorized is returned when the API key is invalid or lacks access (401/403).
	ErrUnauthorized = errors.New("authentication failed")

	// ErrRateLimited is returned when the API rate limit is exceeded (429).
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrValidation is returned when the API rejects the request payload (400/422).
	ErrValidation = errors.New("validation failed")

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrConnection is returned when the API is unreachable.
	ErrConnection = errors.New("connection failed")

	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrChatNotFound is returned when a chat does not exist.
	ErrChatNotFound = errors.New("chat not found")

	// ErrMessageNotFound is returned when a message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrEmailNotFound is returned when an email does not exist.
	ErrEmailNotFound = errors.New("email not found")

	// ErrWebhookNotFound is returned when a webhook does not exist.
	ErrWebhookNotFound = errors.New("webhook not found")
)

// Kind categorizes an API failure. Retryability is fixed per kind,
// except KindUnknown which is retryable only for server-class failures.
type Kind string

const (
	// KindTimeout indicates the request exceeded its deadline. Retryable.
	KindTimeout Kind = "timeout"
	// KindConnection indicates a transport-level connectivity failure. Retryable.
	KindConnection Kind = "connection"
	// KindRateLimit indicates HTTP 429. Retryable.
	KindRateLimit Kind = "rate_limit"
	// KindAuth indicates HTTP 401 or 403. Not retryable.
	KindAuth Kind = "auth"
	// KindValidation indicates HTTP 400 or 422. Not retryable.
	KindValidation Kind = "validation"
	// KindNotFound indicates HTTP 404. Not retryable.
	KindNotFound Kind = "not_found"
	// KindUnknown covers everything else. Retryable for 5xx and
	// unrecognized transport failures, not retryable for other 4xx.
	KindUnknown Kind = "unknown"
)

// ResourceType indicates which type of resource an error relates to.
type ResourceType string

const (
	// ResourceUnknown indicates the resource type is not specified.
	ResourceUnknown ResourceType = ""
	// ResourceAccount indicates the error relates to an account.
	ResourceAccount ResourceType = "account"
	// ResourceChat indicates the error relates to a chat.
	ResourceChat ResourceType = "chat"
	// ResourceMessage indicates the error relates to a message.
	ResourceMessage ResourceType = "message"
	// ResourceEmail indicates the error relates to an email.
	ResourceEmail ResourceType = "email"
	// ResourceWebhook indicates the error relates to a webhook.
	ResourceWebhook ResourceType = "webhook"
	// ResourceProfile indicates the error relates to a LinkedIn profile.
	ResourceProfile ResourceType = "profile"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// APIError is the single error type surfaced by the SDK. The Kind tag
// replaces a subtype hierarchy; kind-specific fields are zero for
// other kinds.
type APIError struct {
	Kind      Kind
	Message   string
	Retryable bool

	// Request context, populated by the dispatcher.
	StatusCode int
	URL        string
	Method     string
	AccountID  string
	Attempt    int
	Body       string

	// KindRateLimit: server-supplied reset deadline, zero if none.
	ResetAt time.Time

	// KindNotFound: set by higher-level callers via WithResource.
	Resource   ResourceType
	ResourceID string

	// KindValidation: per-field details, empty by default.
	Fields []FieldError

	// Underlying transport error, if any.
	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("relayhub: %s (%s %s: status %d)", e.Message, e.Method, e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("relayhub: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("relayhub: %s", e.Message)
}

// Unwrap returns the underlying transport error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.Kind {
	case KindAuth:
		return target == ErrUnauthorized
	case KindRateLimit:
		return target == ErrRateLimited
	case KindValidation:
		return target == ErrValidation
	case KindTimeout:
		return target == ErrTimeout
	case KindConnection:
		return target == ErrConnection
	case KindNotFound:
		switch e.Resource {
		case ResourceAccount:
			return target == ErrAccountNotFound
		case ResourceChat:
			return target == ErrChatNotFound
		case ResourceMessage:
			return target == ErrMessageNotFound
		case ResourceEmail:
			return target == ErrEmailNotFound
		case ResourceWebhook:
			return target == ErrWebhookNotFound
		default:
			// Unknown resource type matches any not-found sentinel.
			return target == ErrAccountNotFound || target == ErrChatNotFound ||
				target == ErrMessageNotFound || target == ErrEmailNotFound ||
				target == ErrWebhookNotFound
		}
	}
	return false
}

// RetryAfter returns how long until the server-supplied reset deadline
// passes. It is zero once the deadline has passed or was never set.
func (e *APIError) RetryAfter() time.Duration {
	if e.ResetAt.IsZero() {
		return 0
	}
	d := time.Until(e.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// WithResource returns a copy of the error with the resource type and
// id set. If the error is not an *APIError, it is returned unchanged.
func WithResource(err error, rt ResourceType, id string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		clone := *apiErr
		clone.Resource = rt
		clone.ResourceID = id
		return &clone
	}
	return err
}

// FromStatus classifies a non-2xx HTTP response into an *APIError.
// The message is extracted from the body when possible.
func FromStatus(statusCode int, body []byte) *APIError {
	e := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	switch {
	case statusCode == 429:
		e.Kind = KindRateLimit
		e.Retryable = true
		e.Message = extractMessage(body, "Rate limit exceeded")
	case statusCode == 401 || statusCode == 403:
		e.Kind = KindAuth
		e.Message = extractMessage(body, "Authentication failed")
	case statusCode == 400 || statusCode == 422:
		e.Kind = KindValidation
		e.Message = extractMessage(body, "Validation failed")
		e.Fields = extractFieldErrors(body)
	case statusCode == 404:
		e.Kind = KindNotFound
		e.Message = extractMessage(body, "Resource not found")
	case statusCode >= 500:
		e.Kind = KindUnknown
		e.Retryable = true
		e.Message = extractMessage(body, "Server error")
	default:
		e.Kind = KindUnknown
		e.Message = extractMessage(body, "Request failed")
	}

	return e
}

// connectivity markers checked against transport error messages when
// the error does not expose a recognized net error type.
var connectionMarkers = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"unexpected EOF",
}

// FromTransport classifies a transport-level failure. Already-typed
// errors pass through unchanged; everything else becomes a timeout,
// connection, or retryable unknown error.
func FromTransport(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if isTimeout(err) {
		return &APIError{
			Kind:      KindTimeout,
			Message:   "request timed out",
			Retryable: true,
			Err:       err,
		}
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) || hasConnectionMarker(err) {
		return &APIError{
			Kind:      KindConnection,
			Message:   "connection failed",
			Retryable: true,
			Err:       err,
		}
	}

	return &APIError{
		Kind:      KindUnknown,
		Message:   "request failed",
		Retryable: true,
		Err:       err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func hasConnectionMarker(err error) bool {
	msg := err.Error()
	for _, marker := range connectionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// extractMessage pulls a human-readable message out of a structured
// error body, trying the common field names in order. A body that
// cannot be parsed falls back silently.
func extractMessage(body []byte, fallback string) string {
	var parsed struct {
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			return parsed.Message
		case parsed.Error != "":
			return parsed.Error
		case parsed.ErrorDescription != "":
			return parsed.ErrorDescription
		}
	}
	return fallback
}

// extractFieldErrors pulls per-field validation details from the body,
// if the server provided any.
func extractFieldErrors(body []byte) []FieldError {
	var parsed struct {
		Errors []FieldError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	return parsed.Errors
}
