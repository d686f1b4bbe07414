// Package summarize turns an article into a short Korean summary using an
// LLM provider, with a deterministic stub when none is configured.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/deusflow/newsbot/internal/scraper"
	"github.com/deusflow/newsbot/internal/upstream"
)

const promptPrefix = "다음 뉴스 기사를 3~5줄로 간단히 요약해주세요:\n\n"

// maxPromptRunes bounds the article text sent to the model.
const maxPromptRunes = 6000

type Summarizer interface {
	Summarize(ctx context.Context, url, title string) (string, error)
}

// Model is a single-prompt text completion backend.
type Model interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ArticleSource fetches the body text of an article.
type ArticleSource interface {
	Extract(ctx context.Context, url string) (*scraper.ArticleContent, error)
}

// Prompt builds the summarization request for the given article text.
func Prompt(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	if utf8.RuneCountInString(text) > maxPromptRunes {
		text = string([]rune(text)[:maxPromptRunes])
	}
	return promptPrefix + text
}

// Client summarizes through a Model. When a source is set the article body
// is added to the prompt; otherwise only the title (or URL) is sent.
type Client struct {
	model   Model
	source  ArticleSource
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewClient(model Model, source ArticleSource, timeout time.Duration, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		model:   model,
		source:  source,
		timeout: timeout,
		log:     log.WithFields(logrus.Fields{"component": "summarizer", "provider": model.Name()}),
	}
}

func (c *Client) Summarize(ctx context.Context, url, title string) (string, error) {
	text := strings.TrimSpace(title)
	if text == "" {
		text = url
	}

	// the timeout covers the scrape and the model call together
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	if c.source != nil {
		art, err := c.source.Extract(callCtx, url)
		switch {
		case err != nil:
			c.log.WithError(err).WithField("url", url).Debug("Scrape failed, summarizing from title")
		case art.Content != "":
			text = strings.TrimSpace(title + "\n\n" + art.Content)
		}
	}

	out, err := c.model.Complete(callCtx, Prompt(text))
	if err != nil {
		err = upstream.Wrap(c.model.Name(), err)
		c.log.WithError(err).WithField("url", url).Warn("Summary failed")
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", &upstream.Error{Provider: c.model.Name(), Message: "empty summary"}
	}

	c.log.WithFields(logrus.Fields{"url": url, "duration": time.Since(start), "chars": utf8.RuneCountInString(out)}).Info("Summary generated")
	return out, nil
}

// Stub returns a fixed summary without any network call.
type Stub struct{}

func (Stub) Summarize(ctx context.Context, url, title string) (string, error) {
	return fmt.Sprintf("%s 요약 완료 (테스트)", url), nil
}
