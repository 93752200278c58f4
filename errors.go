package relayhub

import (
	"github.com/relayhub/client-go/internal/apierrors"
)

// APIError is the single error type surfaced by the SDK. See the Kind
// constants for the failure taxonomy.
type APIError = apierrors.APIError

// ErrorKind categorizes an API failure.
type ErrorKind = apierrors.Kind

// Failure kinds. Retryability is fixed per kind; KindUnknown is
// retryable only for server-class (5xx) and transport failures.
const (
	KindTimeout    = apierrors.KindTimeout
	KindConnection = apierrors.KindConnection
	KindRateLimit  = apierrors.KindRateLimit
	KindAuth       = apierrors.KindAuth
	KindValidation = apierrors.KindValidation
	KindNotFound   = apierrors.KindNotFound
	KindUnknown    = apierrors.KindUnknown
)

// FieldError describes a single failed validation rule on a
// validation error.
type FieldError = apierrors.FieldError

// ResourceType indicates which type of resource a not-found error
// relates to.
type ResourceType = apierrors.ResourceType

// Resource types attached to not-found errors.
const (
	ResourceAccount = apierrors.ResourceAccount
	ResourceChat    = apierrors.ResourceChat
	ResourceMessage = apierrors.ResourceMessage
	ResourceEmail   = apierrors.ResourceEmail
	ResourceWebhook = apierrors.ResourceWebhook
	ResourceProfile = apierrors.ResourceProfile
)

// Sentinel errors for errors.Is() checks
var (
	// ErrUnauthorized is returned when the API key is invalid or lacks access.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrValidation is returned when the API rejects the request payload.
	ErrValidation = apierrors.ErrValidation

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = apierrors.ErrTimeout

	// ErrConnection is returned when the API is unreachable.
	ErrConnection = apierrors.ErrConnection

	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = apierrors.ErrAccountNotFound

	// ErrChatNotFound is returned when a chat does not exist.
	ErrChatNotFound = apierrors.ErrChatNotFound

	// ErrMessageNotFound is returned when a message does not exist.
	ErrMessageNotFound = apierrors.ErrMessageNotFound

	// ErrEmailNotFound is returned when an email does not exist.
	ErrEmailNotFound = apierrors.ErrEmailNotFound

	// ErrWebhookNotFound is returned when a webhook does not exist.
	ErrWebhookNotFound = apierrors.ErrWebhookNotFound
)
