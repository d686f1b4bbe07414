package news

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketsAndDashes = regexp.MustCompile(`[\[\]\(\)\{\}\-–—]`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// NormalizeTitle returns the comparison form of a headline: NFC, case
// folded, brackets and dashes turned into spaces, whitespace collapsed and
// leading/trailing punctuation removed.
func NormalizeTitle(title string) string {
	s := norm.NFC.String(title)
	s = cases.Fold().String(s)
	s = bracketsAndDashes.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// Duplicate records an article dropped by DedupeReport.
type Duplicate struct {
	Article Article
	KeptURL string
	// CrossCategory is set when the kept article belongs to another category.
	CrossCategory bool
}

// Dedupe drops articles whose URL or normalized title was already seen.
// The first occurrence wins and input order is preserved.
func Dedupe(articles []Article) []Article {
	kept, _ := DedupeReport(articles)
	return kept
}

// DedupeReport is Dedupe that also returns what was dropped.
func DedupeReport(articles []Article) ([]Article, []Duplicate) {
	kept := make([]Article, 0, len(articles))
	var dropped []Duplicate

	byURL := make(map[string]int, len(articles))
	byTitle := make(map[string]int, len(articles))

	for _, a := range articles {
		title := NormalizeTitle(a.Title)

		idx, dup := -1, false
		if a.URL != "" {
			idx, dup = lookup(byURL, a.URL)
		}
		if !dup && title != "" {
			idx, dup = lookup(byTitle, title)
		}

		if dup {
			first := kept[idx]
			dropped = append(dropped, Duplicate{
				Article:       a,
				KeptURL:       first.URL,
				CrossCategory: first.Category != a.Category,
			})
			continue
		}

		pos := len(kept)
		kept = append(kept, a)
		if a.URL != "" {
			byURL[a.URL] = pos
		}
		if title != "" {
			byTitle[title] = pos
		}
	}

	return kept, dropped
}

func lookup(m map[string]int, key string) (int, bool) {
	i, ok := m[key]
	return i, ok
}

// Aggregate dedupes and caps the result at maxTotal (0 means no cap). The
// dropped duplicates are reported; articles cut by the cap are not.
func Aggregate(articles []Article, maxTotal int) ([]Article, []Duplicate) {
	out, dropped := DedupeReport(articles)
	if maxTotal > 0 && len(out) > maxTotal {
		out = out[:maxTotal]
	}
	return out, dropped
}
