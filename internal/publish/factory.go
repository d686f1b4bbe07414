package publish

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/deusflow/newsbot/internal/retry"
)

const (
	TargetAuto     = "auto"
	TargetSlack    = "slack"
	TargetTelegram = "telegram"
)

type Config struct {
	Target          string
	SlackToken      string
	SlackChannel    string
	SlackBaseURL    string
	TelegramToken   string
	TelegramChatID  string
	TelegramBaseURL string
	Retry           retry.RetryConfig
	HTTPClient      *http.Client
}

// New chooses the publisher once: live when the target's token and channel
// are both set, preview in that target's format otherwise.
func New(cfg Config, log logrus.FieldLogger) (Publisher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	slackReady := cfg.SlackToken != "" && cfg.SlackChannel != ""
	telegramReady := cfg.TelegramToken != "" && cfg.TelegramChatID != ""

	target := cfg.Target
	if target == "" || target == TargetAuto {
		switch {
		case slackReady:
			target = TargetSlack
		case telegramReady:
			target = TargetTelegram
		default:
			target = TargetSlack
		}
	}

	var sender Sender
	switch target {
	case TargetSlack:
		if !slackReady {
			return NewPreview(StyleSlack, log), nil
		}
		sender = NewSlackSender(cfg.SlackToken, cfg.SlackChannel, cfg.SlackBaseURL, cfg.HTTPClient)
	case TargetTelegram:
		if !telegramReady {
			return NewPreview(StyleTelegram, log), nil
		}
		sender = NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID, cfg.TelegramBaseURL, cfg.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown publish target %q", cfg.Target)
	}

	return NewLive(sender, cfg.Retry, log), nil
}
