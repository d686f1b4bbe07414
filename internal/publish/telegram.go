package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsbot/internal/upstream"
)

const DefaultTelegramBaseURL = "https://api.telegram.org"

// TelegramSender posts with the Bot API sendMessage method.
type TelegramSender struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewTelegramSender(token, chatID, baseURL string, client *http.Client) *TelegramSender {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TelegramSender{token: token, chatID: chatID, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *TelegramSender) Name() string       { return "telegram" }
func (t *TelegramSender) Style() Style       { return StyleTelegram }
func (t *TelegramSender) MaxMessageLen() int { return 4000 }

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (t *TelegramSender) Send(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// the URL carries the bot token
		return upstream.Wrap(t.Name(), redact(err, t.token))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var out telegramResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out.OK {
		return nil
	}

	ue := &upstream.Error{Provider: t.Name(), Code: resp.StatusCode, Message: out.Description}
	if ue.Message == "" {
		ue.Message = strings.TrimSpace(string(raw))
	}
	if ue.Message == "" {
		ue.Message = resp.Status
	}
	if out.Parameters.RetryAfter > 0 {
		ue.RetryAfter = time.Duration(out.Parameters.RetryAfter) * time.Second
	}
	return ue
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "***"), cause: err}
}
