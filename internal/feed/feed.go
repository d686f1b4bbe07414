// Package feed reads RSS/Atom feeds that populate the reading-list category.
package feed

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsbot/internal/search"
	"github.com/deusflow/newsbot/internal/upstream"
)

const provider = "feed"

type Item struct {
	Title       string
	URL         string
	Description string
	PubDate     string // RFC3339 when the feed carried a parseable date
}

type Reader struct {
	parser *gofeed.Parser
}

func NewReader(client *http.Client) *Reader {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	p.UserAgent = "newsbot/1.0"
	return &Reader{parser: p}
}

// Read downloads and parses one feed.
func (r *Reader) Read(ctx context.Context, url string) ([]Item, error) {
	f, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		var he gofeed.HTTPError
		if errors.As(err, &he) {
			return nil, &upstream.Error{Provider: provider, Code: he.StatusCode, Message: he.Status}
		}
		return nil, upstream.Wrap(provider, err)
	}

	items := make([]Item, 0, len(f.Items))
	for _, it := range f.Items {
		if it == nil {
			continue
		}
		items = append(items, Item{
			Title:       search.StripMarkup(it.Title),
			URL:         strings.TrimSpace(it.Link),
			Description: search.StripMarkup(it.Description),
			PubDate:     pubDate(it),
		})
	}
	return items, nil
}

func pubDate(it *gofeed.Item) string {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.Format(time.RFC3339)
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.Format(time.RFC3339)
	default:
		return strings.TrimSpace(it.Published)
	}
}
