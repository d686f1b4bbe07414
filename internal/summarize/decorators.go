package summarize

import (
	"context"
	"net/http"
	"time"

	"github.com/deusflow/newsbot/internal/cache"
	"github.com/deusflow/newsbot/internal/ratelimit"
	"github.com/deusflow/newsbot/internal/upstream"
)

// Cached serves repeated requests for the same article from memory.
// Failures are not cached.
type Cached struct {
	next   Summarizer
	cache  *cache.Cache[string]
	ttl    time.Duration
	budget *ratelimit.Budget
}

// NewCached wraps next. budget may be nil; when set, hits are recorded on it.
func NewCached(next Summarizer, c *cache.Cache[string], ttl time.Duration, budget *ratelimit.Budget) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl, budget: budget}
}

func (c *Cached) Summarize(ctx context.Context, url, title string) (string, error) {
	key := cache.Key(url, title)
	if s, ok := c.cache.Get(key); ok {
		if c.budget != nil {
			c.budget.RecordCacheHit()
		}
		return s, nil
	}

	s, err := c.next.Summarize(ctx, url, title)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, s, c.ttl)
	return s, nil
}

// Budgeted refuses calls once the daily request budget is spent.
type Budgeted struct {
	next   Summarizer
	budget *ratelimit.Budget
}

func NewBudgeted(next Summarizer, budget *ratelimit.Budget) *Budgeted {
	return &Budgeted{next: next, budget: budget}
}

func (b *Budgeted) Summarize(ctx context.Context, url, title string) (string, error) {
	if err := b.budget.Use(); err != nil {
		return "", &upstream.Error{
			Provider:   "budget",
			Code:       http.StatusTooManyRequests,
			Message:    err.Error(),
			RetryAfter: b.budget.ResetIn(),
		}
	}
	return b.next.Summarize(ctx, url, title)
}
