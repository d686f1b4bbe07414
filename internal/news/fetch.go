package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/deusflow/newsbot/internal/catalog"
	"github.com/deusflow/newsbot/internal/feed"
	"github.com/deusflow/newsbot/internal/search"
)

// FeedReader loads the items of one general feed.
type FeedReader interface {
	Read(ctx context.Context, url string) ([]feed.Item, error)
}

type Limits struct {
	MaxTotal          int // raw results after which no more calls are made, 0 = unlimited
	PerKeywordTimeout time.Duration
	InterKeywordDelay time.Duration
	SortOrder         string
	Display           int
	// Catalog re-files feed items by headline keyword; nil keeps the
	// feed's own category.
	Catalog *catalog.Catalog
}

// Failure is a keyword (or feed) whose call failed; it contributed nothing.
type Failure struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
	Reason   string `json:"reason"`
}

type Result struct {
	Articles []Article
	Failures []Failure
}

// Fetcher runs the search calls of a collection plan one after another.
type Fetcher struct {
	searcher search.Searcher
	feeds    FeedReader
	log      logrus.FieldLogger
}

func NewFetcher(s search.Searcher, feeds FeedReader, log logrus.FieldLogger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{searcher: s, feeds: feeds, log: log.WithField("component", "fetcher")}
}

// Fetch issues one search per plan entry in order, then reads the given feed
// sources. Failing calls are recorded and skipped. The returned error is
// only set when ctx itself ends; Result still holds what was gathered.
func (f *Fetcher) Fetch(ctx context.Context, plan []catalog.Entry, limits Limits, sources ...catalog.FeedSource) (Result, error) {
	var res Result

	limiter := rate.NewLimiter(rate.Inf, 1)
	if limits.InterKeywordDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(limits.InterKeywordDelay), 1)
	}

	full := func() bool {
		return limits.MaxTotal > 0 && len(res.Articles) >= limits.MaxTotal
	}

	for _, entry := range plan {
		if full() {
			f.log.WithField("max_total", limits.MaxTotal).Info("Result cap reached, skipping remaining keywords")
			return res, nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("collect: %w", ctxErr(ctx, err))
		}

		hits, err := f.search(ctx, entry.Keyword, limits)
		if err != nil {
			if ctx.Err() != nil {
				return res, fmt.Errorf("collect: %w", ctx.Err())
			}
			f.recordFailure(&res, entry.Category, entry.Keyword, err)
			continue
		}

		for _, h := range hits {
			res.Articles = append(res.Articles, Article{
				Title:       h.Title,
				URL:         h.URL,
				Category:    entry.Category,
				Description: h.Description,
				PubDate:     h.PubDate,
				Keyword:     entry.Keyword,
			})
		}
		f.log.WithFields(logrus.Fields{"category": entry.Category, "keyword": entry.Keyword, "hits": len(hits)}).Debug("Keyword fetched")
	}

	if f.feeds == nil {
		return res, nil
	}

	for _, src := range sources {
		if full() {
			return res, nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("collect: %w", ctxErr(ctx, err))
		}

		callCtx, cancel := withTimeout(ctx, limits.PerKeywordTimeout)
		items, err := f.feeds.Read(callCtx, src.URL)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return res, fmt.Errorf("collect: %w", ctx.Err())
			}
			f.recordFailure(&res, src.Category, src.URL, err)
			continue
		}

		for _, it := range items {
			category := MapCategory(it.Title, limits.Catalog)
			if category == "" {
				category = src.Category
			}
			res.Articles = append(res.Articles, Article{
				Title:       it.Title,
				URL:         it.URL,
				Category:    category,
				Description: it.Description,
				PubDate:     it.PubDate,
			})
		}
		f.log.WithFields(logrus.Fields{"category": src.Category, "feed": src.URL, "items": len(items)}).Debug("Feed fetched")
	}

	return res, nil
}

func (f *Fetcher) search(ctx context.Context, keyword string, limits Limits) ([]search.Hit, error) {
	callCtx, cancel := withTimeout(ctx, limits.PerKeywordTimeout)
	defer cancel()

	return f.searcher.Search(callCtx, search.Request{
		Query:   keyword,
		Sort:    limits.SortOrder,
		Display: limits.Display,
	})
}

func (f *Fetcher) recordFailure(res *Result, category, keyword string, err error) {
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout: " + reason
	}
	res.Failures = append(res.Failures, Failure{Category: category, Keyword: keyword, Reason: reason})
	f.log.WithFields(logrus.Fields{"category": category, "keyword": keyword}).WithError(err).Warn("Fetch failed, continuing")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// ctxErr prefers the context's own error over the limiter's wording.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
