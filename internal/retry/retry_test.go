package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbot/internal/upstream"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Backoff: true}
}

func TestWithRetry_RetriesRetryableThenSucceeds(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return &upstream.Error{Provider: "slack", Code: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_TerminalStatusStopsImmediately(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(5), func() error {
		calls++
		return &upstream.Error{Provider: "slack", Code: 403, Message: "not_in_channel"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	var ue *upstream.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 403, ue.Code)
}

func TestWithRetry_PlainErrorIsTerminal(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(3), func() error {
		calls++
		return errors.New("boom")
	})

	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(3), func() error {
		calls++
		return &upstream.Error{Provider: "slack", Code: 429}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.True(t, upstream.IsRetryable(err))
}

func TestWithRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 3, Delay: time.Hour}

	calls := 0
	err := WithRetry(ctx, cfg, func() error {
		calls++
		cancel()
		return &upstream.Error{Provider: "slack", Code: 500}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDelayFor_CappedWithJitter(t *testing.T) {
	cfg := RetryConfig{Delay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond, Backoff: true}

	for attempt := 1; attempt <= 6; attempt++ {
		d := cfg.delayFor(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestDelayFor_FixedWithoutBackoff(t *testing.T) {
	cfg := RetryConfig{Delay: 40 * time.Millisecond}
	assert.Equal(t, 40*time.Millisecond, cfg.delayFor(4))
}
