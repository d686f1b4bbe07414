// Package app wires configuration, providers and the curator service
// together.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deusflow/newsbot/internal/catalog"
	"github.com/deusflow/newsbot/internal/config"
	"github.com/deusflow/newsbot/internal/curator"
	"github.com/deusflow/newsbot/internal/feed"
	"github.com/deusflow/newsbot/internal/httpapi"
	"github.com/deusflow/newsbot/internal/metrics"
	"github.com/deusflow/newsbot/internal/news"
	"github.com/deusflow/newsbot/internal/publish"
	"github.com/deusflow/newsbot/internal/ratelimit"
	"github.com/deusflow/newsbot/internal/retry"
	"github.com/deusflow/newsbot/internal/review"
	"github.com/deusflow/newsbot/internal/search"
	"github.com/deusflow/newsbot/internal/summarize"
)

type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Service *curator.Service

	log     logrus.FieldLogger
	cleanup []func()
}

// LoadCatalog reads KEYWORDS_FILE, or falls back to the built-in catalog.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.KeywordsFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.KeywordsFile)
}

// New builds every component once. Providers without credentials fall back
// to the demo searcher, the stub summarizer and preview publishing.
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &App{Config: cfg, log: log}

	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var searcher search.Searcher
	if cfg.NaverConfigured() {
		searcher = search.NewNaver(search.NaverConfig{
			ClientID:     cfg.NaverClientID,
			ClientSecret: cfg.NaverClientSecret,
			BaseURL:      cfg.NaverBaseURL,
			HTTPClient:   httpClient,
		})
	} else {
		log.Warn("NAVER_API_CLIENT_ID/SECRET not set, serving demo headlines")
		searcher = search.Demo{}
	}

	budget := ratelimit.NewBudget(cfg.MaxSummaryRequests, log)
	summarizer, closeSummarizer, err := summarize.New(ctx, summarize.Config{
		Provider:      cfg.SummarizerProvider,
		OpenAIKey:     cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiKey:     cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		Timeout:       cfg.SummaryTimeout,
		CacheTTL:      cfg.SummaryCacheTTL,
		MaxPerDay:     cfg.MaxSummaryRequests,
		Budget:        budget,
		Scrape:        cfg.ScrapeArticles,
		HTTPClient:    httpClient,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}
	a.cleanup = append(a.cleanup, closeSummarizer)

	publisher, err := publish.New(publish.Config{
		Target:         cfg.PublishTarget,
		SlackToken:     cfg.SlackBotToken,
		SlackChannel:   cfg.SlackChannelID,
		TelegramToken:  cfg.TelegramToken,
		TelegramChatID: cfg.TelegramChatID,
		Retry: retry.RetryConfig{
			MaxAttempts: cfg.PublishMaxAttempts,
			Delay:       cfg.PublishRetryDelay,
			MaxDelay:    cfg.PublishRetryMaxDelay,
			Backoff:     true,
		},
		HTTPClient: httpClient,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("publisher: %w", err)
	}

	a.Service = curator.New(curator.Options{
		Catalog:    cat,
		Store:      review.NewStore(),
		Fetcher:    news.NewFetcher(searcher, feed.NewReader(httpClient), log),
		Summarizer: summarizer,
		Publisher:  publisher,
		Metrics:    metrics.New(),
		Budget:     budget,
		Limits: news.Limits{
			MaxTotal:          cfg.MaxArticles,
			PerKeywordTimeout: cfg.NaverTimeout,
			InterKeywordDelay: cfg.NaverDelay,
			SortOrder:         cfg.NaverSort,
			Display:           cfg.NaverDisplay,
		},
		Log: log,
	})

	log.WithFields(logrus.Fields{
		"categories": len(cat.Names()),
		"naver":      cfg.NaverConfigured(),
		"provider":   summarize.ResolveProvider(summarize.Config{Provider: cfg.SummarizerProvider, OpenAIKey: cfg.OpenAIAPIKey, GeminiKey: cfg.GeminiAPIKey}),
		"publish":    cfg.PublishTarget,
	}).Info("Application initialized")

	return a, nil
}

// Serve runs the HTTP surface until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv, err := httpapi.New(a.Service, a.log)
	if err != nil {
		return err
	}
	return srv.Run(ctx, a.Config.HTTPAddr)
}

// Close releases provider clients. Safe to call more than once.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}
