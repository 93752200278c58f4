package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

// testLimiter returns a limiter with a controllable clock.
func testLimiter(base, max time.Duration) (*Limiter, *time.Time) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(base, max)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestShouldWait_UnknownAccount(t *testing.T) {
	l, _ := testLimiter(time.Second, 10*time.Second)

	if wait := l.ShouldWait("acc-1"); wait != 0 {
		t.Errorf("ShouldWait() = %v, want 0", wait)
	}
	if n := l.ConsecutiveErrors("acc-1"); n != 0 {
		t.Errorf("ConsecutiveErrors() = %d, want 0", n)
	}
	if b := l.CurrentBackoff("acc-1"); b != time.Second {
		t.Errorf("CurrentBackoff() = %v, want %v", b, time.Second)
	}
}

func TestRecordRateLimitError_BackoffDoubling(t *testing.T) {
	l, _ := testLimiter(time.Second, 10*time.Second)

	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for i, expected := range want {
		l.RecordRateLimitError("acc-1", time.Time{})
		if got := l.CurrentBackoff("acc-1"); got != expected {
			t.Errorf("after %d errors: CurrentBackoff() = %v, want %v", i+1, got, expected)
		}
	}
	if n := l.ConsecutiveErrors("acc-1"); n != len(want) {
		t.Errorf("ConsecutiveErrors() = %d, want %d", n, len(want))
	}
}

func TestRecordSuccess_ResetsState(t *testing.T) {
	l, _ := testLimiter(time.Second, 10*time.Second)

	l.RecordRateLimitError("acc-1", time.Time{})
	l.RecordRateLimitError("acc-1", time.Time{})
	l.RecordSuccess("acc-1")

	if n := l.ConsecutiveErrors("acc-1"); n != 0 {
		t.Errorf("ConsecutiveErrors() = %d, want 0", n)
	}
	if b := l.CurrentBackoff("acc-1"); b != time.Second {
		t.Errorf("CurrentBackoff() = %v, want base delay", b)
	}
	if wait := l.ShouldWait("acc-1"); wait != 0 {
		t.Errorf("ShouldWait() = %v, want 0", wait)
	}
}

func TestShouldWait_BackoffWindow(t *testing.T) {
	l, now := testLimiter(time.Second, 10*time.Second)

	l.RecordRateLimitError("acc-1", time.Time{}) // backoff now 2s

	if wait := l.ShouldWait("acc-1"); wait != 2*time.Second {
		t.Errorf("ShouldWait() = %v, want 2s", wait)
	}

	*now = now.Add(1500 * time.Millisecond)
	if wait := l.ShouldWait("acc-1"); wait != 500*time.Millisecond {
		t.Errorf("ShouldWait() = %v, want 500ms", wait)
	}

	*now = now.Add(time.Second)
	if wait := l.ShouldWait("acc-1"); wait != 0 {
		t.Errorf("ShouldWait() = %v, want 0 after backoff elapsed", wait)
	}
}

func TestRecordRateLimitError_ServerDeadline(t *testing.T) {
	l, now := testLimiter(time.Second, 10*time.Second)

	resetAt := now.Add(30 * time.Second)
	l.RecordRateLimitError("acc-1", resetAt)

	// Server deadline wins and the backoff is left untouched.
	if wait := l.ShouldWait("acc-1"); wait != 30*time.Second {
		t.Errorf("ShouldWait() = %v, want 30s", wait)
	}
	if b := l.CurrentBackoff("acc-1"); b != time.Second {
		t.Errorf("CurrentBackoff() = %v, want base delay (not advanced)", b)
	}
	if n := l.ConsecutiveErrors("acc-1"); n != 1 {
		t.Errorf("ConsecutiveErrors() = %d, want 1", n)
	}
}

func TestShouldWait_ExpiredDeadlineFallsBackToBackoff(t *testing.T) {
	l, now := testLimiter(10*time.Second, time.Minute)

	l.RecordRateLimitError("acc-1", now.Add(2*time.Second))

	// Past the deadline but still inside the backoff window: the
	// expired deadline is cleared and the exponential backoff applies.
	*now = now.Add(3 * time.Second)
	if wait := l.ShouldWait("acc-1"); wait != 7*time.Second {
		t.Errorf("ShouldWait() = %v, want 7s from backoff", wait)
	}

	// The deadline was cleared by the previous check.
	*now = now.Add(8 * time.Second)
	if wait := l.ShouldWait("acc-1"); wait != 0 {
		t.Errorf("ShouldWait() = %v, want 0", wait)
	}
}

func TestReset_SingleAccount(t *testing.T) {
	l, _ := testLimiter(time.Second, 10*time.Second)

	l.RecordRateLimitError("acc-1", time.Time{})
	l.RecordRateLimitError("acc-2", time.Time{})

	l.Reset("acc-1")

	if n := l.ConsecutiveErrors("acc-1"); n != 0 {
		t.Errorf("acc-1 ConsecutiveErrors() = %d, want 0 after reset", n)
	}
	if n := l.ConsecutiveErrors("acc-2"); n != 1 {
		t.Errorf("acc-2 ConsecutiveErrors() = %d, want 1 (unaffected)", n)
	}
}

func TestResetAll(t *testing.T) {
	l, _ := testLimiter(time.Second, 10*time.Second)

	l.RecordRateLimitError("acc-1", time.Time{})
	l.RecordRateLimitError("acc-2", time.Time{})
	l.RecordRateLimitError("", time.Time{})

	l.ResetAll()

	for _, acc := range []string{"acc-1", "acc-2", "", GlobalBucket} {
		if n := l.ConsecutiveErrors(acc); n != 0 {
			t.Errorf("ConsecutiveErrors(%q) = %d, want 0", acc, n)
		}
	}
}

func TestGlobalBucket(t *testing.T) {
	l, _ := testLimiter(time.Second, 10*time.Second)

	l.RecordRateLimitError("", time.Time{})

	if n := l.ConsecutiveErrors(GlobalBucket); n != 1 {
		t.Errorf("ConsecutiveErrors(global) = %d, want 1", n)
	}
	if n := l.ConsecutiveErrors(""); n != 1 {
		t.Errorf("ConsecutiveErrors(\"\") = %d, want 1", n)
	}
}

func TestParseResetHeaders(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		headers http.Header
		want    time.Time
		ok      bool
	}{
		{
			name:    "retry-after seconds",
			headers: http.Header{"Retry-After": []string{"60"}},
			want:    now.Add(60 * time.Second),
			ok:      true,
		},
		{
			name:    "retry-after http date",
			headers: http.Header{"Retry-After": []string{"Thu, 15 Jan 2026 12:05:00 GMT"}},
			want:    time.Date(2026, 1, 15, 12, 5, 0, 0, time.UTC),
			ok:      true,
		},
		{
			name:    "x-ratelimit-reset unix seconds",
			headers: http.Header{"X-Ratelimit-Reset": []string{"1768478700"}},
			want:    time.UnixMilli(1768478700 * 1000),
			ok:      true,
		},
		{
			name:    "x-ratelimit-reset unix millis",
			headers: http.Header{"X-Ratelimit-Reset": []string{"1768478700000"}},
			want:    time.UnixMilli(1768478700000),
			ok:      true,
		},
		{
			name:    "retry-after wins over x-ratelimit-reset",
			headers: http.Header{"Retry-After": []string{"10"}, "X-Ratelimit-Reset": []string{"1768478700"}},
			want:    now.Add(10 * time.Second),
			ok:      true,
		},
		{
			name:    "unparseable retry-after falls through",
			headers: http.Header{"Retry-After": []string{"soon"}, "X-Ratelimit-Reset": []string{"1768478700"}},
			want:    time.UnixMilli(1768478700 * 1000),
			ok:      true,
		},
		{
			name:    "no recognized header",
			headers: http.Header{"Content-Type": []string{"application/json"}},
			ok:      false,
		},
		{
			name:    "garbage only",
			headers: http.Header{"Retry-After": []string{"whenever"}, "X-Ratelimit-Reset": []string{"later"}},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseResetHeadersAt(tt.headers, now)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("reset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	l := NewLimiter(time.Millisecond, 10*time.Millisecond)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			acc := "acc"
			for j := 0; j < 100; j++ {
				l.ShouldWait(acc)
				l.RecordRateLimitError(acc, time.Time{})
				l.CurrentBackoff(acc)
				l.RecordSuccess(acc)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if n := l.ConsecutiveErrors("acc"); n < 0 {
		t.Errorf("ConsecutiveErrors() = %d, want non-negative", n)
	}
}
