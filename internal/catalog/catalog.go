// Package catalog holds the curator's keyword catalog: an ordered list of
// categories, each with the search keywords (or feeds) that populate it.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCategory is returned when a category name is not in the catalog.
var ErrUnknownCategory = errors.New("unknown category")

const (
	defaultMaxArticles = 30
	defaultMaxAgeHours = 24
)

var defaultExcludeCues = []string{"광고", "협찬", "제휴", "프로모션"}

// File is the YAML layout of the keywords file.
//
//	default_category: 읽을거리
//	max_articles: 30
//	categories:
//	  - name: 그룹사
//	    keywords: [현대백화점]
type File struct {
	DefaultCategory string         `yaml:"default_category"`
	MaxArticles     *int           `yaml:"max_articles"`
	MaxAgeHours     *int           `yaml:"max_age_hours"`
	ExcludeCues     []string       `yaml:"exclude_cues"`
	Categories      []CategoryFile `yaml:"categories"`
}

type CategoryFile struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Feeds    []string `yaml:"feeds"`
}

// Entry is one (category, keyword) search to perform.
type Entry struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
}

// FeedSource is a general feed that populates a keyword-less category.
type FeedSource struct {
	Category string
	URL      string
}

type category struct {
	name     string
	keywords []string
	feeds    []string
}

// Catalog is immutable once built; all accessors return copies.
type Catalog struct {
	categories      []category
	index           map[string]int
	defaultCategory string
	maxArticles     int
	maxAgeHours     int
	excludeCues     []string
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	c, err := New(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// New validates f and builds a Catalog.
func New(f File) (*Catalog, error) {
	if len(f.Categories) == 0 {
		return nil, errors.New("no categories defined")
	}

	c := &Catalog{
		index:       make(map[string]int, len(f.Categories)),
		maxArticles: defaultMaxArticles,
		maxAgeHours: defaultMaxAgeHours,
		excludeCues: defaultExcludeCues,
	}

	for i, cf := range f.Categories {
		name := strings.TrimSpace(cf.Name)
		if name == "" {
			return nil, fmt.Errorf("category #%d has no name", i+1)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("category %q defined twice", name)
		}

		seen := map[string]struct{}{}
		keywords := make([]string, 0, len(cf.Keywords))
		for _, kw := range cf.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				return nil, fmt.Errorf("category %q has an empty keyword", name)
			}
			if _, dup := seen[kw]; dup {
				return nil, fmt.Errorf("category %q lists keyword %q twice", name, kw)
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}

		feeds := make([]string, 0, len(cf.Feeds))
		for _, u := range cf.Feeds {
			u = strings.TrimSpace(u)
			if u == "" {
				return nil, fmt.Errorf("category %q has an empty feed url", name)
			}
			feeds = append(feeds, u)
		}

		c.index[name] = len(c.categories)
		c.categories = append(c.categories, category{name: name, keywords: keywords, feeds: feeds})
	}

	c.defaultCategory = strings.TrimSpace(f.DefaultCategory)
	if c.defaultCategory == "" {
		c.defaultCategory = c.categories[len(c.categories)-1].name
	}
	if !c.Has(c.defaultCategory) {
		return nil, fmt.Errorf("default category %q: %w", c.defaultCategory, ErrUnknownCategory)
	}

	if f.MaxArticles != nil {
		if *f.MaxArticles < 0 {
			return nil, fmt.Errorf("max_articles must be >= 0, got %d", *f.MaxArticles)
		}
		c.maxArticles = *f.MaxArticles
	}
	if f.MaxAgeHours != nil {
		if *f.MaxAgeHours < 0 {
			return nil, fmt.Errorf("max_age_hours must be >= 0, got %d", *f.MaxAgeHours)
		}
		c.maxAgeHours = *f.MaxAgeHours
	}
	if f.ExcludeCues != nil {
		c.excludeCues = nil
		for _, cue := range f.ExcludeCues {
			if cue = strings.TrimSpace(cue); cue != "" {
				c.excludeCues = append(c.excludeCues, cue)
			}
		}
	}

	return c, nil
}

// Default mirrors the categories the clipping service started with.
func Default() *Catalog {
	c, err := New(File{
		DefaultCategory: "읽을거리",
		Categories: []CategoryFile{
			{Name: "그룹사", Keywords: []string{"현대백화점", "현대홈쇼핑", "현대그린푸드"}},
			{Name: "업계", Keywords: []string{"식권", "기업 복지", "밀키트", "푸드테크"}},
			{Name: "참고", Keywords: []string{"이커머스", "복지 포인트"}},
			{Name: "읽을거리"},
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns category names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.name
	}
	return names
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// KeywordsForCategory returns the keywords of a category; the keyword-less
// reading list yields an empty slice.
func (c *Catalog) KeywordsForCategory(name string) ([]string, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return append([]string{}, c.categories[i].keywords...), nil
}

// Plan lists (category, keyword) pairs in catalog order. With no names the
// whole catalog is planned.
func (c *Catalog) Plan(names ...string) ([]Entry, error) {
	cats, err := c.pick(names)
	if err != nil {
		return nil, err
	}

	var plan []Entry
	for _, cat := range cats {
		for _, kw := range cat.keywords {
			plan = append(plan, Entry{Category: cat.name, Keyword: kw})
		}
	}
	return plan, nil
}

// Feeds lists the general feeds of the selected categories in catalog order.
func (c *Catalog) Feeds(names ...string) ([]FeedSource, error) {
	cats, err := c.pick(names)
	if err != nil {
		return nil, err
	}

	var out []FeedSource
	for _, cat := range cats {
		for _, u := range cat.feeds {
			out = append(out, FeedSource{Category: cat.name, URL: u})
		}
	}
	return out, nil
}

func (c *Catalog) pick(names []string) ([]category, error) {
	if len(names) == 0 {
		return c.categories, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if !c.Has(n) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, n)
		}
		wanted[n] = true
	}

	out := make([]category, 0, len(wanted))
	for _, cat := range c.categories {
		if wanted[cat.name] {
			out = append(out, cat)
		}
	}
	return out, nil
}

// DefaultCategory is the catch-all category for articles without a keyword.
func (c *Catalog) DefaultCategory() string { return c.defaultCategory }

func (c *Catalog) MaxArticles() int { return c.maxArticles }

func (c *Catalog) MaxAgeHours() int { return c.maxAgeHours }

func (c *Catalog) ExcludeCues() []string { return append([]string{}, c.excludeCues...) }
