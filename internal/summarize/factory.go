package summarize

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deusflow/newsbot/internal/cache"
	"github.com/deusflow/newsbot/internal/ratelimit"
	"github.com/deusflow/newsbot/internal/scraper"
)

const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderStub   = "stub"
)

type Config struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	Timeout       time.Duration
	CacheTTL      time.Duration
	MaxPerDay     int
	// Budget is shared with whoever reports usage; nil builds one from
	// MaxPerDay.
	Budget     *ratelimit.Budget
	Scrape     bool
	HTTPClient *http.Client
}

// ResolveProvider picks the backend for "auto": OpenAI, then Gemini, then
// the stub, depending on which key is present.
func ResolveProvider(cfg Config) string {
	if cfg.Provider != "" && cfg.Provider != ProviderAuto {
		return cfg.Provider
	}
	switch {
	case cfg.OpenAIKey != "":
		return ProviderOpenAI
	case cfg.GeminiKey != "":
		return ProviderGemini
	default:
		return ProviderStub
	}
}

// New assembles the summarizer chain: cache, daily budget, then the model
// client. The returned cleanup releases the model client and cache.
func New(ctx context.Context, cfg Config, log logrus.FieldLogger) (Summarizer, func(), error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var (
		model   Model
		cleanup = func() {}
	)

	provider := ResolveProvider(cfg)
	switch provider {
	case ProviderStub:
		log.WithField("component", "summarizer").Info("No summarizer key configured, using stub summaries")
		return Stub{}, cleanup, nil
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, nil, fmt.Errorf("summarizer provider openai requires OPENAI_API_KEY")
		}
		model = NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.HTTPClient)
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, nil, fmt.Errorf("summarizer provider gemini requires GEMINI_API_KEY")
		}
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		model = g
		cleanup = func() { _ = g.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown summarizer provider %q", provider)
	}

	var source ArticleSource
	if cfg.Scrape {
		source = scraper.New(cfg.HTTPClient, 0)
	}

	var s Summarizer = NewClient(model, source, cfg.Timeout, log)

	budget := cfg.Budget
	if budget == nil {
		budget = ratelimit.NewBudget(cfg.MaxPerDay, log)
	}
	if cfg.MaxPerDay > 0 {
		s = NewBudgeted(s, budget)
	}

	if cfg.CacheTTL > 0 {
		c := cache.New[string](time.Hour)
		s = NewCached(s, c, cfg.CacheTTL, budget)
		prev := cleanup
		cleanup = func() {
			c.Close()
			prev()
		}
	}

	log.WithFields(logrus.Fields{"component": "summarizer", "provider": provider, "scrape": cfg.Scrape}).Info("Summarizer ready")
	return s, cleanup, nil
}
