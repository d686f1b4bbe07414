// Package curator is the core of the clipping workflow: collect articles
// into the review store, let the curator act on them, then summarize and
// publish the selection.
package curator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deusflow/newsbot/internal/catalog"
	"github.com/deusflow/newsbot/internal/metrics"
	"github.com/deusflow/newsbot/internal/news"
	"github.com/deusflow/newsbot/internal/publish"
	"github.com/deusflow/newsbot/internal/ratelimit"
	"github.com/deusflow/newsbot/internal/review"
	"github.com/deusflow/newsbot/internal/summarize"
	"github.com/deusflow/newsbot/internal/upstream"
)

// ErrBadRequest marks invalid caller input other than an unknown category.
var ErrBadRequest = errors.New("bad request")

// Fetcher gathers raw articles for a plan.
type Fetcher interface {
	Fetch(ctx context.Context, plan []catalog.Entry, limits news.Limits, sources ...catalog.FeedSource) (news.Result, error)
}

// Plan narrows a collect run. Empty fields mean the whole catalog.
type Plan struct {
	Categories []string `json:"categories"`
	Keywords   []string `json:"keywords"`
}

type CollectResult struct {
	Count                   int            `json:"count"`
	PartialFailures         []news.Failure `json:"partial_failures"`
	DuplicatesDropped       int            `json:"duplicates_dropped"`
	CrossCategoryDuplicates int            `json:"cross_category_duplicates"`
	Filtered                int            `json:"filtered"`
}

type SummaryResult struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

type Service struct {
	catalog    *catalog.Catalog
	store      *review.Store
	fetcher    Fetcher
	summarizer summarize.Summarizer
	publisher  publish.Publisher
	metrics    *metrics.Metrics
	budget     *ratelimit.Budget
	limits     news.Limits
	now        func() time.Time
	log        logrus.FieldLogger
}

type Options struct {
	Catalog    *catalog.Catalog
	Store      *review.Store
	Fetcher    Fetcher
	Summarizer summarize.Summarizer
	Publisher  publish.Publisher
	Metrics    *metrics.Metrics
	// Budget, when set, is reported under summary_budget in Stats.
	Budget *ratelimit.Budget
	// Limits applies to every collect; a zero MaxTotal takes the catalog's.
	Limits news.Limits
	Log    logrus.FieldLogger
}

func New(opts Options) *Service {
	s := &Service{
		catalog:    opts.Catalog,
		store:      opts.Store,
		fetcher:    opts.Fetcher,
		summarizer: opts.Summarizer,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		budget:     opts.Budget,
		limits:     opts.Limits,
		now:        time.Now,
		log:        opts.Log,
	}
	if s.store == nil {
		s.store = review.NewStore()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.limits.MaxTotal == 0 {
		s.limits.MaxTotal = s.catalog.MaxArticles()
	}
	if s.limits.Catalog == nil {
		s.limits.Catalog = s.catalog
	}
	s.log = s.log.WithField("component", "curator")
	return s
}

// Collect fetches the plan, filters and dedupes the result and replaces the
// review store contents in one step. Per-keyword failures are reported, not
// returned as errors.
func (s *Service) Collect(ctx context.Context, p Plan) (CollectResult, error) {
	start := time.Now()

	entries, sources, err := s.resolve(p)
	if err != nil {
		return CollectResult{}, err
	}

	fetched, err := s.fetcher.Fetch(ctx, entries, s.limits, sources...)
	if err != nil {
		// a caller that went away is not a service failure
		if !errors.Is(err, context.Canceled) {
			s.metrics.SetError(err.Error())
		}
		return CollectResult{}, err
	}

	articles, ads := news.FilterAdvertorials(fetched.Articles, s.catalog.ExcludeCues())
	articles, stale := news.FilterByAge(articles, time.Duration(s.catalog.MaxAgeHours())*time.Hour, s.now())

	kept, dropped := news.Aggregate(articles, s.limits.MaxTotal)
	cross := 0
	for _, d := range dropped {
		if d.CrossCategory {
			cross++
			s.log.WithFields(logrus.Fields{
				"url":      d.Article.URL,
				"category": d.Article.Category,
				"kept_url": d.KeptURL,
			}).Info("Cross-category duplicate dropped")
		}
	}

	s.store.ReplaceAll(kept)

	res := CollectResult{
		Count:                   len(kept),
		PartialFailures:         fetched.Failures,
		DuplicatesDropped:       len(dropped),
		CrossCategoryDuplicates: cross,
		Filtered:                ads + stale,
	}
	if res.PartialFailures == nil {
		res.PartialFailures = []news.Failure{}
	}

	elapsed := time.Since(start)
	s.metrics.RecordCollect(metrics.CollectStats{
		Fetched:       len(fetched.Articles),
		Kept:          len(kept),
		Duplicates:    len(dropped),
		CrossCategory: cross,
		Advertorials:  ads,
		Stale:         stale,
		Failures:      len(fetched.Failures),
		Duration:      elapsed,
	})
	s.log.WithFields(logrus.Fields{
		"fetched":    len(fetched.Articles),
		"kept":       len(kept),
		"duplicates": len(dropped),
		"filtered":   ads + stale,
		"failures":   len(fetched.Failures),
		"duration":   elapsed,
	}).Info("Collect finished")

	return res, nil
}

// resolve turns a Plan into catalog entries and feed sources. Keywords, when
// given, must belong to the selected categories.
func (s *Service) resolve(p Plan) ([]catalog.Entry, []catalog.FeedSource, error) {
	entries, err := s.catalog.Plan(p.Categories...)
	if err != nil {
		return nil, nil, err
	}
	sources, err := s.catalog.Feeds(p.Categories...)
	if err != nil {
		return nil, nil, err
	}
	if len(p.Keywords) == 0 {
		return entries, sources, nil
	}

	wanted := make(map[string]bool, len(p.Keywords))
	for _, k := range p.Keywords {
		wanted[k] = true
	}
	var picked []catalog.Entry
	for _, e := range entries {
		if wanted[e.Keyword] {
			picked = append(picked, e)
			delete(wanted, e.Keyword)
		}
	}
	for k := range wanted {
		return nil, nil, fmt.Errorf("%w: keyword %q is not in the selected categories", ErrBadRequest, k)
	}
	// an explicit keyword list skips the general feeds
	return picked, nil, nil
}

func (s *Service) ListArticles() []news.Article {
	return s.store.List()
}

func (s *Service) ListByCategory(category string) ([]news.Article, error) {
	return s.store.ListByCategory(category, s.catalog)
}

func (s *Service) DeleteArticle(url string) bool {
	return s.store.DeleteByURL(url)
}

func (s *Service) SetSelected(url string, selected bool) bool {
	return s.store.SetSelected(url, selected)
}

// SummarizeAndStore summarizes one stored article. On failure the stored
// summary is left as it was.
func (s *Service) SummarizeAndStore(ctx context.Context, url string) (SummaryResult, error) {
	a, err := s.store.GetByURL(url)
	if err != nil {
		return SummaryResult{}, err
	}

	summary, err := s.summarizer.Summarize(ctx, a.URL, a.Title)
	if err != nil {
		s.metrics.IncrementSummaries(false)
		return SummaryResult{}, err
	}
	s.metrics.IncrementSummaries(true)

	if !s.store.SetSummary(url, summary) {
		// deleted or replaced by a collect while the provider was working
		return SummaryResult{}, fmt.Errorf("%w: %s", review.ErrNotFound, url)
	}
	return SummaryResult{URL: url, Summary: summary}, nil
}

// PublishSelected sends the selected articles in catalog category order.
func (s *Service) PublishSelected(ctx context.Context) (publish.Result, error) {
	selected := s.store.Selected()
	res, err := s.publisher.Publish(ctx, selected, publish.FormatOptions{
		CategoryOrder:   s.catalog.Names(),
		DefaultCategory: s.catalog.DefaultCategory(),
	})
	if err != nil {
		s.metrics.IncrementPublishes("failed")
		s.metrics.SetError(err.Error())
		s.log.WithError(err).WithField("upstream", upstream.IsRetryable(err)).Error("Publish failed")
		return publish.Result{}, err
	}
	s.metrics.IncrementPublishes(string(res.Mode))
	return res, nil
}

// CategoryInfo describes one catalog category for the UI.
type CategoryInfo struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
}

func (s *Service) Categories() []CategoryInfo {
	counts := map[string]int{}
	for _, a := range s.store.List() {
		counts[a.Category]++
	}

	names := s.catalog.Names()
	out := make([]CategoryInfo, 0, len(names))
	for _, n := range names {
		kws, _ := s.catalog.KeywordsForCategory(n)
		out = append(out, CategoryInfo{Name: n, Keywords: kws, Count: counts[n]})
	}
	return out
}

func (s *Service) Stats() map[string]interface{} {
	stats := s.metrics.GetStats()
	stats["articles_in_review"] = s.store.Len()
	stats["articles_selected"] = len(s.store.Selected())
	if s.budget != nil {
		stats["summary_budget"] = s.budget.GetStats()
	}
	return stats
}

func (s *Service) Healthy() bool {
	return s.metrics.Healthy()
}
