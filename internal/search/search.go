// Package search talks to the news search provider.
package search

import "context"

const (
	SortRelevance = "sim"
	SortDate      = "date"
)

type Request struct {
	Query   string
	Sort    string
	Display int
}

// Hit is one search result with markup already removed.
type Hit struct {
	Title       string
	URL         string
	Description string
	PubDate     string
}

type Searcher interface {
	Search(ctx context.Context, req Request) ([]Hit, error)
}

// ValidSort reports whether s is a sort order the provider accepts.
func ValidSort(s string) bool {
	return s == SortRelevance || s == SortDate
}
