package news

import (
	"strings"
	"time"
)

// Article is one collected news item as shown to the curator.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Selected    bool   `json:"selected"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	PubDate     string `json:"pub_date"`
	Keyword     string `json:"keyword"`
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Published parses PubDate. Naver uses RFC1123Z; feeds are normalized to
// RFC3339 by the feed reader.
func (a Article) Published() (time.Time, bool) {
	s := strings.TrimSpace(a.PubDate)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
