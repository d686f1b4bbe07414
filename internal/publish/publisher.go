// Package publish delivers the curator's selection to a chat channel, or
// renders a preview when no channel is configured.
package publish

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deusflow/newsbot/internal/news"
	"github.com/deusflow/newsbot/internal/retry"
)

type Mode string

const (
	ModeSent    Mode = "sent"
	ModePreview Mode = "preview"
)

type Result struct {
	Mode        Mode   `json:"mode"`
	MessageText string `json:"messageText"`
}

type Publisher interface {
	Publish(ctx context.Context, articles []news.Article, opts FormatOptions) (Result, error)
}

// Sender posts one message to a chat provider.
type Sender interface {
	Name() string
	Style() Style
	// MaxMessageLen is the provider's per-message limit in runes, 0 if none.
	MaxMessageLen() int
	Send(ctx context.Context, text string) error
}

// PreviewPublisher formats the message without sending it.
type PreviewPublisher struct {
	style Style
	log   logrus.FieldLogger
}

func NewPreview(style Style, log logrus.FieldLogger) *PreviewPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PreviewPublisher{style: style, log: log.WithField("component", "publisher")}
}

func (p *PreviewPublisher) Publish(ctx context.Context, articles []news.Article, opts FormatOptions) (Result, error) {
	text := Format(p.style, articles, opts)
	p.log.WithField("articles", len(articles)).Info("Publisher not configured, returning preview")
	return Result{Mode: ModePreview, MessageText: text}, nil
}

// LivePublisher sends through a Sender, retrying transient failures.
type LivePublisher struct {
	sender Sender
	retry  retry.RetryConfig
	log    logrus.FieldLogger
}

func NewLive(sender Sender, rc retry.RetryConfig, log logrus.FieldLogger) *LivePublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LivePublisher{
		sender: sender,
		retry:  rc,
		log:    log.WithFields(logrus.Fields{"component": "publisher", "target": sender.Name()}),
	}
}

func (p *LivePublisher) Publish(ctx context.Context, articles []news.Article, opts FormatOptions) (Result, error) {
	text := Format(p.sender.Style(), articles, opts)
	chunks := splitMessage(text, p.sender.MaxMessageLen())

	for i, chunk := range chunks {
		attempt := 0
		err := retry.WithRetry(ctx, p.retry, func() error {
			attempt++
			err := p.sender.Send(ctx, chunk)
			if err != nil {
				p.log.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "part": i + 1}).Warn("Send failed")
			}
			return err
		})
		if err != nil {
			return Result{}, fmt.Errorf("publish to %s (part %d/%d): %w", p.sender.Name(), i+1, len(chunks), err)
		}
	}

	p.log.WithFields(logrus.Fields{"articles": len(articles), "parts": len(chunks)}).Info("Clipping sent")
	return Result{Mode: ModeSent, MessageText: text}, nil
}
