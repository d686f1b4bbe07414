package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsbot/internal/upstream"
)

const (
	DefaultNaverBaseURL = "https://openapi.naver.com"
	naverProvider       = "naver"
	naverNewsPath       = "/v1/search/news.json"
	maxDisplay          = 100
)

type NaverConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client
}

// Naver queries the Naver news search API.
type Naver struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
}

func NewNaver(cfg NaverConfig) *Naver {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultNaverBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Naver{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      base,
		httpClient:   hc,
	}
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

type naverError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}

// Search performs one news query. The caller's context bounds the call.
func (n *Naver) Search(ctx context.Context, req Request) ([]Hit, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	if req.Display > 0 {
		q.Set("display", strconv.Itoa(min(req.Display, maxDisplay)))
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+naverNewsPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build naver request: %w", err)
	}
	httpReq.Header.Set("X-Naver-Client-Id", n.clientID)
	httpReq.Header.Set("X-Naver-Client-Secret", n.clientSecret)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(httpReq)
	if err != nil {
		return nil, upstream.Wrap(naverProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ue := upstream.FromResponse(naverProvider, resp)
		var ne naverError
		if json.Unmarshal([]byte(ue.Message), &ne) == nil && ne.ErrorMessage != "" {
			ue.Message = fmt.Sprintf("%s (%s)", ne.ErrorMessage, ne.ErrorCode)
		}
		return nil, ue
	}

	var body naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if upstream.IsTimeoutCause(err) {
			return nil, upstream.Wrap(naverProvider, err)
		}
		return nil, &upstream.Error{Provider: naverProvider, Code: resp.StatusCode, Message: "decode response: " + err.Error()}
	}

	hits := make([]Hit, 0, len(body.Items))
	for _, it := range body.Items {
		link := strings.TrimSpace(it.OriginalLink)
		if link == "" {
			link = strings.TrimSpace(it.Link)
		}
		hits = append(hits, Hit{
			Title:       StripMarkup(it.Title),
			URL:         link,
			Description: StripMarkup(it.Description),
			PubDate:     strings.TrimSpace(it.PubDate),
		})
	}
	return hits, nil
}

// StripMarkup removes tags such as <b> and decodes HTML entities.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
