package publish

import (
	"fmt"
	"html"
	"strings"

	"github.com/deusflow/newsbot/internal/news"
)

type Style string

const (
	StyleSlack    Style = "slack"
	StyleTelegram Style = "telegram"
)

const (
	headline     = "오늘의 클리핑"
	emptyMessage = "선택된 기사가 없습니다."
)

// FormatOptions controls how selected articles are grouped.
type FormatOptions struct {
	// CategoryOrder lists categories in display order; categories not in it
	// follow in the order they first appear.
	CategoryOrder []string
	// DefaultCategory is used for articles without a category.
	DefaultCategory string
}

type group struct {
	name     string
	articles []news.Article
}

func groupByCategory(articles []news.Article, opts FormatOptions) []group {
	byName := map[string][]news.Article{}
	var seen []string
	for _, a := range articles {
		cat := a.Category
		if cat == "" {
			cat = opts.DefaultCategory
		}
		if _, ok := byName[cat]; !ok {
			seen = append(seen, cat)
		}
		byName[cat] = append(byName[cat], a)
	}

	var groups []group
	placed := map[string]bool{}
	for _, name := range opts.CategoryOrder {
		if items, ok := byName[name]; ok && !placed[name] {
			groups = append(groups, group{name: name, articles: items})
			placed[name] = true
		}
	}
	for _, name := range seen {
		if !placed[name] {
			groups = append(groups, group{name: name, articles: byName[name]})
			placed[name] = true
		}
	}
	return groups
}

// Format renders the clipping message in the markup of the given channel.
func Format(style Style, articles []news.Article, opts FormatOptions) string {
	if style == StyleTelegram {
		return FormatTelegram(articles, opts)
	}
	return FormatSlack(articles, opts)
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// slackURLEscaper also encodes |, which would end the link target early.
var slackURLEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "|", "%7C")

// FormatSlack renders Slack mrkdwn:
//
//	:newspaper: *오늘의 클리핑*
//
//	*[그룹사]*
//	• <url|title> — summary
func FormatSlack(articles []news.Article, opts FormatOptions) string {
	if len(articles) == 0 {
		return fmt.Sprintf("*%s*\n\n%s", headline, emptyMessage)
	}

	lines := []string{fmt.Sprintf(":newspaper: *%s*\n", headline)}
	for _, g := range groupByCategory(articles, opts) {
		lines = append(lines, fmt.Sprintf("*[%s]*", g.name))
		for _, a := range g.articles {
			title := slackEscaper.Replace(a.Title)
			url := slackURLEscaper.Replace(a.URL)
			link := title
			switch {
			case url != "" && title != "":
				link = fmt.Sprintf("<%s|%s>", url, strings.ReplaceAll(title, "|", "¦"))
			case title == "":
				link = url
			}
			lines = append(lines, "• "+link+snippet(slackEscaper.Replace(a.Summary)))
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FormatTelegram renders the same message with Telegram HTML markup.
func FormatTelegram(articles []news.Article, opts FormatOptions) string {
	if len(articles) == 0 {
		return fmt.Sprintf("<b>%s</b>\n\n%s", headline, emptyMessage)
	}

	lines := []string{fmt.Sprintf("📰 <b>%s</b>\n", headline)}
	for _, g := range groupByCategory(articles, opts) {
		lines = append(lines, fmt.Sprintf("<b>[%s]</b>", html.EscapeString(g.name)))
		for _, a := range g.articles {
			title := html.EscapeString(a.Title)
			link := title
			switch {
			case a.URL != "" && title != "":
				link = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(a.URL), title)
			case title == "":
				link = html.EscapeString(a.URL)
			}
			lines = append(lines, "• "+link+snippet(html.EscapeString(a.Summary)))
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func snippet(summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ""
	}
	return " — " + summary
}

// splitMessage cuts text into chunks of at most limit runes, breaking
// between lines where possible.
func splitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.TrimRight(string(cur), "\n"))
			cur = cur[:0]
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(cur)+len(r) > limit {
			flush()
		}
		for len(r) > limit {
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	flush()
	return chunks
}
