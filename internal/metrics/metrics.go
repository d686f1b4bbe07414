package metrics

import (
	"sync"
	"time"
)

// Metrics holds process-lifetime counters for the curator.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	CollectRuns             int64
	ArticlesFetched         int64
	ArticlesKept            int64
	DuplicatesFiltered      int64
	CrossCategoryDuplicates int64
	AdvertorialsFiltered    int64
	StaleFiltered           int64
	KeywordFailures         int64
	SummariesOK             int64
	SummariesFailed         int64
	PublishesSent           int64
	PublishesPreview        int64
	PublishesFailed         int64

	// Timings
	LastCollectTime    time.Duration
	AverageCollectTime time.Duration
	TotalCollectTime   time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

// CollectStats is what one collect run contributes.
type CollectStats struct {
	Fetched       int
	Kept          int
	Duplicates    int
	CrossCategory int
	Advertorials  int
	Stale         int
	Failures      int
	Duration      time.Duration
}

func (m *Metrics) RecordCollect(s CollectStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CollectRuns++
	m.ArticlesFetched += int64(s.Fetched)
	m.ArticlesKept += int64(s.Kept)
	m.DuplicatesFiltered += int64(s.Duplicates)
	m.CrossCategoryDuplicates += int64(s.CrossCategory)
	m.AdvertorialsFiltered += int64(s.Advertorials)
	m.StaleFiltered += int64(s.Stale)
	m.KeywordFailures += int64(s.Failures)

	m.LastCollectTime = s.Duration
	m.TotalCollectTime += s.Duration
	m.AverageCollectTime = m.TotalCollectTime / time.Duration(m.CollectRuns)

	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) IncrementSummaries(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.SummariesOK++
	} else {
		m.SummariesFailed++
	}
}

// IncrementPublishes counts one publish attempt by outcome: "sent",
// "preview" or anything else for a failure.
func (m *Metrics) IncrementPublishes(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch mode {
	case "sent":
		m.PublishesSent++
	case "preview":
		m.PublishesPreview++
	default:
		m.PublishesFailed++
	}
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"collect_runs":              m.CollectRuns,
		"articles_fetched":          m.ArticlesFetched,
		"articles_kept":             m.ArticlesKept,
		"duplicates_filtered":       m.DuplicatesFiltered,
		"cross_category_duplicates": m.CrossCategoryDuplicates,
		"advertorials_filtered":     m.AdvertorialsFiltered,
		"stale_filtered":            m.StaleFiltered,
		"keyword_failures":          m.KeywordFailures,
		"summaries_ok":              m.SummariesOK,
		"summaries_failed":          m.SummariesFailed,
		"publishes_sent":            m.PublishesSent,
		"publishes_preview":         m.PublishesPreview,
		"publishes_failed":          m.PublishesFailed,
		"last_collect_time_ms":      m.LastCollectTime.Milliseconds(),
		"average_collect_time_ms":   m.AverageCollectTime.Milliseconds(),
		"last_error":                m.LastError,
		"is_healthy":                m.IsHealthy,
	}
	if !m.LastRunTime.IsZero() {
		stats["last_run_time"] = m.LastRunTime.Format(time.RFC3339)
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
