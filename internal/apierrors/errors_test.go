package apierrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestFromStatus_Classification(t *testing.T) {
	tests := []struct {
		status    int
		kind      Kind
		retryable bool
	}{
		{429, KindRateLimit, true},
		{401, KindAuth, false},
		{403, KindAuth, false},
		{400, KindValidation, false},
		{422, KindValidation, false},
		{404, KindNotFound, false},
		{500, KindUnknown, true},
		{502, KindUnknown, true},
		{503, KindUnknown, true},
		{409, KindUnknown, false},
		{418, KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			e := FromStatus(tt.status, nil)
			if e.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", e.Kind, tt.kind)
			}
			if e.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", e.Retryable, tt.retryable)
			}
			if e.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", e.StatusCode, tt.status)
			}
		})
	}
}

func TestFromStatus_MessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"account is disconnected"}`, "account is disconnected"},
		{"error field", `{"error":"bad cursor"}`, "bad cursor"},
		{"error_description field", `{"error_description":"expired token"}`, "expired token"},
		{"message wins over error", `{"message":"first","error":"second"}`, "first"},
		{"unparseable body falls back", `<html>nope</html>`, "Validation failed"},
		{"empty body falls back", ``, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromStatus(400, []byte(tt.body))
			if e.Message != tt.want {
				t.Errorf("Message = %q, want %q", e.Message, tt.want)
			}
		})
	}
}

func TestFromStatus_Fallbacks(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{429, "Rate limit exceeded"},
		{401, "Authentication failed"},
		{404, "Resource not found"},
		{500, "Server error"},
		{409, "Request failed"},
	}
	for _, tt := range tests {
		if e := FromStatus(tt.status, nil); e.Message != tt.want {
			t.Errorf("FromStatus(%d).Message = %q, want %q", tt.status, e.Message, tt.want)
		}
	}
}

func TestFromStatus_ValidationFields(t *testing.T) {
	body := `{"message":"Validation failed","errors":[{"field":"provider","message":"unsupported","value":"MYSPACE"}]}`
	e := FromStatus(422, []byte(body))

	if len(e.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1", len(e.Fields))
	}
	if e.Fields[0].Field != "provider" || e.Fields[0].Message != "unsupported" {
		t.Errorf("Fields[0] = %+v", e.Fields[0])
	}

	if e := FromStatus(400, []byte(`{"message":"nope"}`)); len(e.Fields) != 0 {
		t.Errorf("Fields = %v, want empty by default", e.Fields)
	}
}

func TestRetryAfter(t *testing.T) {
	e := &APIError{Kind: KindRateLimit, ResetAt: time.Now().Add(5 * time.Second)}
	if d := e.RetryAfter(); d <= 0 || d > 5*time.Second {
		t.Errorf("RetryAfter() = %v, want in (0, 5s]", d)
	}

	past := &APIError{Kind: KindRateLimit, ResetAt: time.Now().Add(-time.Second)}
	if d := past.RetryAfter(); d != 0 {
		t.Errorf("RetryAfter() = %v, want 0 for past deadline", d)
	}

	unset := &APIError{Kind: KindRateLimit}
	if d := unset.RetryAfter(); d != 0 {
		t.Errorf("RetryAfter() = %v, want 0 when never set", d)
	}
}

func TestFromTransport_Timeout(t *testing.T) {
	e := FromTransport(fmt.Errorf("get: %w", context.DeadlineExceeded))
	if e.Kind != KindTimeout {
		t.Errorf("Kind = %s, want timeout", e.Kind)
	}
	if !e.Retryable {
		t.Error("timeout must be retryable")
	}
	if !errors.Is(e, ErrTimeout) {
		t.Error("errors.Is(e, ErrTimeout) = false")
	}
}

func TestFromTransport_Connection(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"dns error", &net.DNSError{Err: "no such host", Name: "api.example.com", IsNotFound: true}},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}},
		{"marker substring", errors.New("dial tcp 127.0.0.1:1: connect: connection refused")},
		{"reset substring", errors.New("read tcp: connection reset by peer")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromTransport(tt.err)
			if e.Kind != KindConnection {
				t.Errorf("Kind = %s, want connection", e.Kind)
			}
			if !e.Retryable {
				t.Error("connection errors must be retryable")
			}
		})
	}
}

func TestFromTransport_Unknown(t *testing.T) {
	e := FromTransport(errors.New("something odd"))
	if e.Kind != KindUnknown {
		t.Errorf("Kind = %s, want unknown", e.Kind)
	}
	if !e.Retryable {
		t.Error("unrecognized transport errors must be retryable")
	}
}

func TestFromTransport_PassThrough(t *testing.T) {
	orig := &APIError{Kind: KindAuth, Message: "nope"}
	e := FromTransport(fmt.Errorf("wrapped: %w", orig))
	if e != orig {
		t.Error("already-typed error was re-wrapped")
	}
}

func TestIs_Sentinels(t *testing.T) {
	tests := []struct {
		err    *APIError
		target error
	}{
		{&APIError{Kind: KindAuth}, ErrUnauthorized},
		{&APIError{Kind: KindRateLimit}, ErrRateLimited},
		{&APIError{Kind: KindValidation}, ErrValidation},
		{&APIError{Kind: KindTimeout}, ErrTimeout},
		{&APIError{Kind: KindConnection}, ErrConnection},
		{&APIError{Kind: KindNotFound, Resource: ResourceAccount}, ErrAccountNotFound},
		{&APIError{Kind: KindNotFound, Resource: ResourceChat}, ErrChatNotFound},
		{&APIError{Kind: KindNotFound, Resource: ResourceEmail}, ErrEmailNotFound},
		{&APIError{Kind: KindNotFound, Resource: ResourceWebhook}, ErrWebhookNotFound},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.target) {
			t.Errorf("errors.Is(%s/%s, %v) = false", tt.err.Kind, tt.err.Resource, tt.target)
		}
	}

	// Untagged not-found matches any resource sentinel.
	untagged := &APIError{Kind: KindNotFound}
	if !errors.Is(untagged, ErrAccountNotFound) || !errors.Is(untagged, ErrEmailNotFound) {
		t.Error("untagged not-found should match resource sentinels")
	}

	// Mismatched resource does not.
	if errors.Is(&APIError{Kind: KindNotFound, Resource: ResourceChat}, ErrAccountNotFound) {
		t.Error("chat not-found should not match ErrAccountNotFound")
	}
}

func TestWithResource(t *testing.T) {
	base := FromStatus(404, nil)
	err := WithResource(fmt.Errorf("get chat: %w", base), ResourceChat, "chat-9")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected APIError")
	}
	if apiErr.Resource != ResourceChat || apiErr.ResourceID != "chat-9" {
		t.Errorf("Resource = %s/%s, want chat/chat-9", apiErr.Resource, apiErr.ResourceID)
	}
	// Original untouched.
	if base.Resource != ResourceUnknown {
		t.Error("WithResource mutated the original error")
	}

	plain := errors.New("plain")
	if got := WithResource(plain, ResourceChat, "x"); got != plain {
		t.Error("non-APIError should pass through unchanged")
	}
	if got := WithResource(nil, ResourceChat, "x"); got != nil {
		t.Error("nil should pass through")
	}
}

func TestError_Format(t *testing.T) {
	e := &APIError{
		Kind:       KindValidation,
		Message:    "Validation failed",
		StatusCode: 422,
		Method:     "POST",
		URL:        "https://api.relayhub.io/api/v1/chats",
	}
	want := "relayhub: Validation failed (POST https://api.relayhub.io/api/v1/chats: status 422)"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	transport := &APIError{Kind: KindConnection, Message: "connection failed", Err: errors.New("dial tcp: connection refused")}
	if got := transport.Error(); got != "relayhub: connection failed: dial tcp: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}
