package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HTTP_ADDR", "KEYWORDS_FILE", "MAX_ARTICLES",
	"NAVER_API_CLIENT_ID", "NAVER_API_CLIENT_SECRET", "NAVER_BASE_URL",
	"NAVER_TIMEOUT_MS", "NAVER_SORT", "NAVER_DELAY_MS", "NAVER_DISPLAY",
	"SUMMARIZER_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "SUMMARY_TIMEOUT_SEC",
	"SUMMARY_CACHE_TTL_HOURS", "MAX_SUMMARY_REQUESTS", "SCRAPE_ARTICLES",
	"PUBLISH_TARGET", "SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID",
	"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "PUBLISH_MAX_ATTEMPTS",
	"PUBLISH_RETRY_DELAY_MS", "PUBLISH_RETRY_MAX_DELAY_MS",
	"LOG_LEVEL", "LOG_FILE", "DEBUG",
}

// cleanEnv blanks every variable Load reads and moves into an empty
// directory so no .env file is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.NaverTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.NaverDelay)
	assert.Equal(t, "sim", cfg.NaverSort)
	assert.Equal(t, 10, cfg.NaverDisplay)
	assert.Equal(t, "auto", cfg.SummarizerProvider)
	assert.Equal(t, 15*time.Second, cfg.SummaryTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SummaryCacheTTL)
	assert.True(t, cfg.ScrapeArticles)
	assert.Equal(t, "auto", cfg.PublishTarget)
	assert.Equal(t, 3, cfg.PublishMaxAttempts)
	assert.False(t, cfg.NaverConfigured())
	assert.False(t, cfg.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("NAVER_API_CLIENT_ID", "id")
	t.Setenv("NAVER_API_CLIENT_SECRET", "secret")
	t.Setenv("NAVER_TIMEOUT_MS", "1500")
	t.Setenv("NAVER_SORT", "date")
	t.Setenv("MAX_ARTICLES", "12")
	t.Setenv("SCRAPE_ARTICLES", "false")
	t.Setenv("PUBLISH_TARGET", "telegram")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.True(t, cfg.NaverConfigured())
	assert.Equal(t, 1500*time.Millisecond, cfg.NaverTimeout)
	assert.Equal(t, "date", cfg.NaverSort)
	assert.Equal(t, 12, cfg.MaxArticles)
	assert.False(t, cfg.ScrapeArticles)
	assert.Equal(t, "telegram", cfg.PublishTarget)
	assert.True(t, cfg.Debug)
}

func TestLoad_DotEnv(t *testing.T) {
	cleanEnv(t)
	// godotenv does not override variables that are already set, even empty
	require.NoError(t, os.Unsetenv("SLACK_CHANNEL_ID"))
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("SLACK_CHANNEL_ID=C42\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SLACK_CHANNEL_ID") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "C42", cfg.SlackChannelID)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"NAVER_SORT":          "random",
		"SUMMARIZER_PROVIDER": "claude",
		"PUBLISH_TARGET":      "discord",
		"NAVER_TIMEOUT_MS":    "0",
		"NAVER_DISPLAY":       "500",
		"SUMMARY_TIMEOUT_SEC": "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
