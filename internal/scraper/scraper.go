// Package scraper pulls readable body text out of news article pages so the
// summarizer has more than a headline to work with.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/deusflow/newsbot/internal/upstream"
)

const (
	provider        = "scraper"
	maxPageBytes    = 4 << 20
	minContentRunes = 80
	defaultMaxRunes = 3000
)

// ArticleContent is full article content
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

type Scraper struct {
	client   *http.Client
	maxRunes int
}

// New returns a Scraper; maxRunes <= 0 uses the default cap on extracted text.
func New(client *http.Client, maxRunes int) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if maxRunes <= 0 {
		maxRunes = defaultMaxRunes
	}
	return &Scraper{client: client, maxRunes: maxRunes}
}

// Extract downloads pageURL and returns its main text. Readability is tried
// first; known article containers are the fallback.
func (s *Scraper) Extract(ctx context.Context, pageURL string) (*ArticleContent, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid article url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newsbot/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, upstream.Wrap(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.FromResponse(provider, resp)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, upstream.Wrap(provider, err)
	}

	var title, content string
	if art, err := readability.FromReader(bytes.NewReader(page), u); err == nil {
		title = strings.TrimSpace(art.Title)
		content = cleanContent(art.TextContent, s.maxRunes)
	}

	if utf8.RuneCountInString(content) < minContentRunes {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		if fallback := cleanContent(extractGenericContent(doc), s.maxRunes); utf8.RuneCountInString(fallback) > utf8.RuneCountInString(content) {
			content = fallback
		}
		if title == "" {
			title = extractTitle(doc)
		}
	}

	if content == "" {
		return nil, fmt.Errorf("no article text found at %s", pageURL)
	}

	return &ArticleContent{Title: title, Content: content, URL: pageURL}, nil
}

// extractGenericContent collects paragraphs from the usual article bodies
// of Korean portals and newspapers, then from generic containers.
func extractGenericContent(doc *goquery.Document) string {
	// Bodies that keep text directly in the container with <br> breaks.
	for _, selector := range []string{"#dic_area", "#articleBodyContents", "#newsct_article", "#articleBody", ".article_body", ".news_end"} {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); len([]rune(text)) > minContentRunes {
			return text
		}
	}

	var paragraphs []string
	selectors := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		"p",
	}
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if utf8.RuneCountInString(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	for _, selector := range []string{"h1", "h2.media_end_head_headline", "title"} {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

var junkPhrases = []string{
	"무단전재 및 재배포 금지",
	"무단 전재 및 재배포 금지",
	"저작권자",
	"기사제보",
	"구독하기",
	"좋아요",
	"Copyright",
}

// cleanContent drops boilerplate lines, collapses whitespace and caps the
// text at maxRunes without cutting a paragraph in half when possible.
func cleanContent(content string, maxRunes int) string {
	var paragraphs []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if utf8.RuneCountInString(line) < 2 || isJunk(line) {
			continue
		}
		paragraphs = append(paragraphs, line)
	}

	text := strings.Join(paragraphs, "\n")
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	var kept []string
	total := 0
	for _, p := range paragraphs {
		n := utf8.RuneCountInString(p) + 1
		if total+n > maxRunes {
			break
		}
		kept = append(kept, p)
		total += n
	}
	if len(kept) > 0 {
		return strings.Join(kept, "\n")
	}
	return string([]rune(text)[:maxRunes])
}

func isJunk(line string) bool {
	for _, p := range junkPhrases {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}
