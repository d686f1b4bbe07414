package news

import (
	"strings"
	"time"

	"github.com/deusflow/newsbot/internal/catalog"
)

// containsAny reports whether text contains any of the cue words,
// ignoring case.
func containsAny(text string, cues []string) bool {
	text = strings.ToLower(text)
	for _, c := range cues {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && strings.Contains(text, c) {
			return true
		}
	}
	return false
}

// IsAdvertorial reports whether a headline carries a sponsored-content cue.
func IsAdvertorial(title string, cues []string) bool {
	return containsAny(title, cues)
}

// FilterAdvertorials drops articles whose title contains a cue word and
// returns how many were removed.
func FilterAdvertorials(articles []Article, cues []string) ([]Article, int) {
	if len(cues) == 0 {
		return articles, 0
	}
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if IsAdvertorial(a.Title, cues) {
			continue
		}
		out = append(out, a)
	}
	return out, len(articles) - len(out)
}

// FilterByAge drops articles published more than maxAge before now.
// Articles without a parseable date are kept; maxAge <= 0 keeps everything.
func FilterByAge(articles []Article, maxAge time.Duration, now time.Time) ([]Article, int) {
	if maxAge <= 0 {
		return articles, 0
	}
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if t, ok := a.Published(); ok && now.Sub(t) > maxAge {
			continue
		}
		out = append(out, a)
	}
	return out, len(articles) - len(out)
}

// MapCategory returns the first catalog category, in catalog order, with a
// keyword that appears in the title. It returns "" when nothing matches.
func MapCategory(title string, cat *catalog.Catalog) string {
	if cat == nil {
		return ""
	}
	entries, err := cat.Plan()
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if containsAny(title, []string{e.Keyword}) {
			return e.Category
		}
	}
	return ""
}
