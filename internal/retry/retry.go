package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/deusflow/newsbot/internal/upstream"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration // base delay before the second attempt
	MaxDelay    time.Duration // cap for a single wait, 0 = uncapped
	Backoff     bool          // Exponential backoff with full jitter
}

// WithRetry calls fn until it succeeds, returns a terminal error, or the
// attempts run out. Only errors classified by upstream.IsRetryable are
// repeated (429, 5xx, timeouts). A provider Retry-After hint wins over the
// computed delay when it is longer.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !upstream.IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("failed after %d attempts: %w", attempts, err)
		}

		delay := config.delayFor(attempt)
		if hint := upstream.RetryAfterOf(err); hint > delay {
			delay = hint
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func (c RetryConfig) delayFor(attempt int) time.Duration {
	if !c.Backoff {
		return c.Delay
	}
	d := c.Delay << (attempt - 1)
	if d <= 0 || (c.MaxDelay > 0 && d > c.MaxDelay) {
		d = c.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d)) + 1)
}
