// Package review keeps the articles of the current collection run in memory
// while the curator works through them.
package review

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deusflow/newsbot/internal/catalog"
	"github.com/deusflow/newsbot/internal/news"
)

var ErrNotFound = errors.New("article not found")

// Store is keyed by URL and keeps insertion order. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	order []string
	byURL map[string]news.Article
}

func NewStore() *Store {
	return &Store{byURL: make(map[string]news.Article)}
}

// ReplaceAll discards the current contents. A URL repeated in articles keeps
// its first position and the last value.
func (s *Store) ReplaceAll(articles []news.Article) {
	order := make([]string, 0, len(articles))
	byURL := make(map[string]news.Article, len(articles))
	for _, a := range articles {
		if _, seen := byURL[a.URL]; !seen {
			order = append(order, a.URL)
		}
		byURL[a.URL] = a
	}

	s.mu.Lock()
	s.order = order
	s.byURL = byURL
	s.mu.Unlock()
}

func (s *Store) List() []news.Article {
	return s.Filter("")
}

// Filter returns the articles of one category, or all of them for "".
func (s *Store) Filter(category string) []news.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]news.Article, 0, len(s.order))
	for _, u := range s.order {
		a := s.byURL[u]
		if category == "" || a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// ListByCategory is Filter for a name the catalog knows.
func (s *Store) ListByCategory(category string, cat *catalog.Catalog) ([]news.Article, error) {
	if !cat.Has(category) {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, category)
	}
	return s.Filter(category), nil
}

func (s *Store) GetByURL(url string) (news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byURL[url]
	if !ok {
		return news.Article{}, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return a, nil
}

func (s *Store) DeleteByURL(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byURL[url]; !ok {
		return false
	}
	delete(s.byURL, url)
	for i, u := range s.order {
		if u == url {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) SetSelected(url string, selected bool) bool {
	return s.update(url, func(a *news.Article) { a.Selected = selected })
}

func (s *Store) SetSummary(url, summary string) bool {
	return s.update(url, func(a *news.Article) { a.Summary = summary })
}

func (s *Store) update(url string, fn func(*news.Article)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byURL[url]
	if !ok {
		return false
	}
	fn(&a)
	s.byURL[url] = a
	return true
}

// Selected returns the articles marked for publishing in insertion order.
func (s *Store) Selected() []news.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []news.Article
	for _, u := range s.order {
		if a := s.byURL[u]; a.Selected {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
