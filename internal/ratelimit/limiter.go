// Package ratelimit tracks per-account backoff state for the RelayHub
// API. Accounts that keep hitting 429s back off exponentially unless
// the server supplies an explicit reset deadline, in which case the
// deadline takes precedence over the self-managed backoff.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// GlobalBucket is the state key used for requests with no account context.
const GlobalBucket = "global"

// unixMillisThreshold separates seconds-since-epoch from
// milliseconds-since-epoch in X-RateLimit-Reset values.
const unixMillisThreshold = 10_000_000_000

// accountState is the rate-limit state for one account bucket.
type accountState struct {
	consecutiveErrors int
	resetAt           time.Time // zero when no server deadline is recorded
	currentBackoff    time.Duration
	lastRequest       time.Time // zero until the first recorded outcome
}

// Limiter tracks rate-limit state per account. It is safe for
// concurrent use; entries are created lazily and live until Reset or
// ResetAll discards them.
type Limiter struct {
	baseDelay time.Duration
	maxDelay  time.Duration

	mu       sync.Mutex
	accounts map[string]*accountState

	now func() time.Time
}

// NewLimiter creates a limiter whose backoff starts at baseDelay and
// doubles per consecutive rate-limit error up to maxDelay.
func NewLimiter(baseDelay, maxDelay time.Duration) *Limiter {
	return &Limiter{
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
		accounts:  make(map[string]*accountState),
		now:       time.Now,
	}
}

// bucket normalizes an empty account id to the global bucket.
func bucket(accountID string) string {
	if accountID == "" {
		return GlobalBucket
	}
	return accountID
}

// getOrCreate returns the state for an account, creating zeroed
// defaults on first reference. Callers must hold l.mu.
func (l *Limiter) getOrCreate(accountID string) *accountState {
	key := bucket(accountID)
	state, ok := l.accounts[key]
	if !ok {
		state = &accountState{currentBackoff: l.baseDelay}
		l.accounts[key] = state
	}
	return state
}

// ShouldWait returns how long the caller must wait before issuing the
// next request for the account, or zero if it may proceed now. A
// recorded server reset deadline wins over the exponential backoff;
// once the deadline has passed it is cleared.
func (l *Limiter) ShouldWait(accountID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.getOrCreate(accountID)
	now := l.now()

	if !state.resetAt.IsZero() {
		if remaining := state.resetAt.Sub(now); remaining > 0 {
			return remaining
		}
		state.resetAt = time.Time{}
	}

	if state.consecutiveErrors > 0 && !state.lastRequest.IsZero() {
		elapsed := now.Sub(state.lastRequest)
		if elapsed < state.currentBackoff {
			return state.currentBackoff - elapsed
		}
	}

	return 0
}

// RecordSuccess resets the account's failure state.
func (l *Limiter) RecordSuccess(accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.getOrCreate(accountID)
	state.consecutiveErrors = 0
	state.currentBackoff = l.baseDelay
	state.resetAt = time.Time{}
	state.lastRequest = l.now()
}

// RecordRateLimitError records a 429 outcome. When the server supplied
// a reset deadline it is stored as-is and the exponential backoff is
// left untouched; without a deadline the backoff doubles up to the
// configured maximum. Pass a zero resetAt when the server gave no hint.
func (l *Limiter) RecordRateLimitError(accountID string, resetAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.getOrCreate(accountID)
	state.consecutiveErrors++
	state.lastRequest = l.now()

	if !resetAt.IsZero() {
		state.resetAt = resetAt
		return
	}

	doubled := state.currentBackoff * 2
	if doubled > l.maxDelay {
		doubled = l.maxDelay
	}
	state.currentBackoff = doubled
}

// Reset discards state for one account. The account behaves as brand
// new on next reference.
func (l *Limiter) Reset(accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, bucket(accountID))
}

// ResetAll discards state for every tracked account.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = make(map[string]*accountState)
}

// CurrentBackoff returns the account's current backoff delay.
func (l *Limiter) CurrentBackoff(accountID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreate(accountID).currentBackoff
}

// ConsecutiveErrors returns the account's consecutive failure count.
func (l *Limiter) ConsecutiveErrors(accountID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreate(accountID).consecutiveErrors
}

// ParseResetHeaders extracts a rate-limit reset deadline from response
// headers. Retry-After is tried first, as delta-seconds then as an
// HTTP date; X-RateLimit-Reset is tried last, as a Unix timestamp in
// seconds or milliseconds. The second return value is false when no
// recognized header is present or parseable.
func ParseResetHeaders(headers http.Header) (time.Time, bool) {
	return parseResetHeadersAt(headers, time.Now())
}

func parseResetHeadersAt(headers http.Header, now time.Time) (time.Time, bool) {
	if v := headers.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return now.Add(time.Duration(secs) * time.Second), true
		}
		if t, err := http.ParseTime(v); err == nil {
			return t, true
		}
	}

	if v := headers.Get("X-RateLimit-Reset"); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			if unix < unixMillisThreshold {
				unix *= 1000
			}
			return time.UnixMilli(unix), true
		}
	}

	return time.Time{}, false
}
