// Package config loads runtime settings from the environment (and an
// optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/deusflow/newsbot/internal/search"
)

type Config struct {
	// HTTP settings
	HTTPAddr string

	// Catalog
	KeywordsFile string
	MaxArticles  int // overrides the catalog's max_articles when > 0

	// Naver news search
	NaverClientID     string
	NaverClientSecret string
	NaverBaseURL      string
	NaverTimeout      time.Duration
	NaverSort         string // sim | date
	NaverDelay        time.Duration
	NaverDisplay      int

	// Summarizer settings
	SummarizerProvider string // auto | openai | gemini | stub
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiAPIKey       string
	GeminiModel        string
	SummaryTimeout     time.Duration
	SummaryCacheTTL    time.Duration
	MaxSummaryRequests int // per day, 0 = unlimited
	ScrapeArticles     bool

	// Publisher settings
	PublishTarget        string // auto | slack | telegram
	SlackBotToken        string
	SlackChannelID       string
	TelegramToken        string
	TelegramChatID       string
	PublishMaxAttempts   int
	PublishRetryDelay    time.Duration
	PublishRetryMaxDelay time.Duration

	// App settings
	LogLevel string
	LogFile  string
	Debug    bool
}

// Load reads .env (if present) and the environment. Credentials are all
// optional: missing ones select the demo searcher, the stub summarizer and
// preview publishing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:     getEnvOrDefault("HTTP_ADDR", ":5001"),
		KeywordsFile: os.Getenv("KEYWORDS_FILE"),
		MaxArticles:  getEnvIntOrDefault("MAX_ARTICLES", 0),

		NaverClientID:     os.Getenv("NAVER_API_CLIENT_ID"),
		NaverClientSecret: os.Getenv("NAVER_API_CLIENT_SECRET"),
		NaverBaseURL:      os.Getenv("NAVER_BASE_URL"),
		NaverTimeout:      getEnvMillisOrDefault("NAVER_TIMEOUT_MS", 5*time.Second),
		NaverSort:         getEnvOrDefault("NAVER_SORT", "sim"),
		NaverDelay:        getEnvMillisOrDefault("NAVER_DELAY_MS", 300*time.Millisecond),
		NaverDisplay:      getEnvIntOrDefault("NAVER_DISPLAY", 10),

		SummarizerProvider: getEnvOrDefault("SUMMARIZER_PROVIDER", "auto"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		SummaryTimeout:     time.Duration(getEnvIntOrDefault("SUMMARY_TIMEOUT_SEC", 15)) * time.Second,
		SummaryCacheTTL:    time.Duration(getEnvIntOrDefault("SUMMARY_CACHE_TTL_HOURS", 24)) * time.Hour,
		MaxSummaryRequests: getEnvIntOrDefault("MAX_SUMMARY_REQUESTS", 0),
		ScrapeArticles:     getEnvBoolOrDefault("SCRAPE_ARTICLES", true),

		PublishTarget:        getEnvOrDefault("PUBLISH_TARGET", "auto"),
		SlackBotToken:        os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannelID:       os.Getenv("SLACK_CHANNEL_ID"),
		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:       os.Getenv("TELEGRAM_CHAT_ID"),
		PublishMaxAttempts:   getEnvIntOrDefault("PUBLISH_MAX_ATTEMPTS", 3),
		PublishRetryDelay:    getEnvMillisOrDefault("PUBLISH_RETRY_DELAY_MS", time.Second),
		PublishRetryMaxDelay: getEnvMillisOrDefault("PUBLISH_RETRY_MAX_DELAY_MS", 10*time.Second),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
		Debug:    getEnvBoolOrDefault("DEBUG", false),
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvMillisOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// NaverConfigured reports whether live news search is possible.
func (c *Config) NaverConfigured() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != ""
}

func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if !search.ValidSort(c.NaverSort) {
		return fmt.Errorf("NAVER_SORT must be 'sim' or 'date', got %q", c.NaverSort)
	}
	if c.NaverTimeout <= 0 {
		return fmt.Errorf("NAVER_TIMEOUT_MS must be positive")
	}
	if c.NaverDelay < 0 {
		return fmt.Errorf("NAVER_DELAY_MS must not be negative")
	}
	if c.NaverDisplay < 1 || c.NaverDisplay > 100 {
		return fmt.Errorf("NAVER_DISPLAY must be between 1 and 100")
	}
	if c.MaxArticles < 0 {
		return fmt.Errorf("MAX_ARTICLES must not be negative")
	}

	switch c.SummarizerProvider {
	case "auto", "openai", "gemini", "stub":
	default:
		return fmt.Errorf("SUMMARIZER_PROVIDER must be one of auto, openai, gemini, stub, got %q", c.SummarizerProvider)
	}
	if c.SummaryTimeout <= 0 {
		return fmt.Errorf("SUMMARY_TIMEOUT_SEC must be positive")
	}
	if c.MaxSummaryRequests < 0 {
		return fmt.Errorf("MAX_SUMMARY_REQUESTS must not be negative")
	}

	switch c.PublishTarget {
	case "auto", "slack", "telegram":
	default:
		return fmt.Errorf("PUBLISH_TARGET must be one of auto, slack, telegram, got %q", c.PublishTarget)
	}
	if c.PublishMaxAttempts < 1 {
		return fmt.Errorf("PUBLISH_MAX_ATTEMPTS must be at least 1")
	}
	if c.PublishRetryDelay <= 0 || c.PublishRetryMaxDelay <= 0 {
		return fmt.Errorf("publish retry delays must be positive")
	}
	return nil
}
