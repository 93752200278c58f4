package api

import (
	"context"
	"time"
)

// Delays between retry attempts for non-rate-limit retryable failures
// (timeouts, connectivity, 5xx). Seeded independently of the
// per-account limiter: the first retry waits the base unit, doubling
// per attempt up to the ceiling.
const (
	defaultAttemptBaseDelay = time.Second
	defaultAttemptMaxDelay  = 30 * time.Second
)

// attemptDelay returns the wait before retrying after the given
// 1-based failed attempt.
func (c *Client) attemptDelay(attempt int) time.Duration {
	delay := c.attemptBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.attemptMaxDelay {
			return c.attemptMaxDelay
		}
	}
	if delay > c.attemptMaxDelay {
		delay = c.attemptMaxDelay
	}
	return delay
}

// sleep waits for the given duration or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
