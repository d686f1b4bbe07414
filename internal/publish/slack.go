package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsbot/internal/upstream"
)

const DefaultSlackBaseURL = "https://slack.com/api"

// SlackSender posts with chat.postMessage using a bot token.
type SlackSender struct {
	token   string
	channel string
	baseURL string
	client  *http.Client
}

func NewSlackSender(token, channel, baseURL string, client *http.Client) *SlackSender {
	if baseURL == "" {
		baseURL = DefaultSlackBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SlackSender{token: token, channel: channel, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *SlackSender) Name() string       { return "slack" }
func (s *SlackSender) Style() Style       { return StyleSlack }
func (s *SlackSender) MaxMessageLen() int { return 39000 }

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *SlackSender) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]interface{}{
		"channel":      s.channel,
		"text":         text,
		"mrkdwn":       true,
		"unfurl_links": false,
	})
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return upstream.Wrap(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upstream.FromResponse(s.Name(), resp)
	}

	// Slack reports most failures as 200 with ok=false.
	var out slackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &upstream.Error{Provider: s.Name(), Code: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if !out.OK {
		ue := &upstream.Error{Provider: s.Name(), Message: out.Error}
		if out.Error == "ratelimited" {
			ue.Code = http.StatusTooManyRequests
		}
		return ue
	}
	return nil
}
