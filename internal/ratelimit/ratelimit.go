package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Budget caps how many paid AI requests are made per day. Counters reset
// 24 hours after the window opened.
type Budget struct {
	mu          sync.Mutex
	max         int // 0 = unlimited
	used        int
	cacheHits   int
	cacheMisses int
	resetTime   time.Time
	now         func() time.Time
	log         logrus.FieldLogger
}

func NewBudget(maxPerDay int, log logrus.FieldLogger) *Budget {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &Budget{max: maxPerDay, now: time.Now, log: log.WithField("component", "budget")}
	b.resetTime = b.now().Add(24 * time.Hour)
	return b
}

// Use reserves one request or fails when today's budget is spent.
func (b *Budget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("daily AI request limit reached (%d/%d)", b.used, b.max)
	}

	b.used++
	b.cacheMisses++
	b.log.WithFields(logrus.Fields{"used": b.used, "limit": b.max}).Debug("AI request reserved")
	return nil
}

func (b *Budget) RecordCacheHit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheHits++
}

// ResetIn is the time left until the counters reset.
func (b *Budget) ResetIn() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resetTime.Sub(b.now())
}

func (b *Budget) cacheHitRate() float64 {
	total := b.cacheHits + b.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(b.cacheHits) / float64(total) * 100
}

func (b *Budget) GetStats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	return map[string]interface{}{
		"used":           b.used,
		"limit":          b.max,
		"cache_hits":     b.cacheHits,
		"cache_misses":   b.cacheMisses,
		"cache_hit_rate": b.cacheHitRate(),
		"reset_time":     b.resetTime,
	}
}

func (b *Budget) checkReset() {
	if b.now().After(b.resetTime) {
		b.log.WithFields(logrus.Fields{"used": b.used, "cache_hits": b.cacheHits}).Info("Resetting daily AI budget")
		b.used = 0
		b.cacheHits = 0
		b.cacheMisses = 0
		b.resetTime = b.now().Add(24 * time.Hour)
	}
}
