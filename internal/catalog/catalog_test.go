package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
default_category: 읽을거리
max_articles: 12
max_age_hours: 48
exclude_cues: [광고]
categories:
  - name: 그룹사
    keywords: [현대백화점, " 현대홈쇼핑 "]
  - name: 업계
    keywords: [식권]
  - name: 읽을거리
    feeds: [https://example.com/rss]
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	c, err := LoadFile(writeFile(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"그룹사", "업계", "읽을거리"}, c.Names())
	assert.Equal(t, "읽을거리", c.DefaultCategory())
	assert.Equal(t, 12, c.MaxArticles())
	assert.Equal(t, 48, c.MaxAgeHours())
	assert.Equal(t, []string{"광고"}, c.ExcludeCues())

	kws, err := c.KeywordsForCategory("그룹사")
	require.NoError(t, err)
	assert.Equal(t, []string{"현대백화점", "현대홈쇼핑"}, kws)

	kws, err = c.KeywordsForCategory("읽을거리")
	require.NoError(t, err)
	assert.Empty(t, kws)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	_, err := LoadFile(writeFile(t, "categories: [oops"))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	neg := -1
	cases := map[string]File{
		"no categories":    {},
		"empty name":       {Categories: []CategoryFile{{Name: " "}}},
		"duplicate name":   {Categories: []CategoryFile{{Name: "a"}, {Name: "a"}}},
		"empty keyword":    {Categories: []CategoryFile{{Name: "a", Keywords: []string{""}}}},
		"dup keyword":      {Categories: []CategoryFile{{Name: "a", Keywords: []string{"x", "x"}}}},
		"empty feed":       {Categories: []CategoryFile{{Name: "a", Feeds: []string{" "}}}},
		"unknown default":  {DefaultCategory: "zzz", Categories: []CategoryFile{{Name: "a"}}},
		"negative max":     {MaxArticles: &neg, Categories: []CategoryFile{{Name: "a"}}},
		"negative max age": {MaxAgeHours: &neg, Categories: []CategoryFile{{Name: "a"}}},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(f)
			assert.Error(t, err)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(File{Categories: []CategoryFile{{Name: "a", Keywords: []string{"x"}}, {Name: "b"}}})
	require.NoError(t, err)

	assert.Equal(t, "b", c.DefaultCategory())
	assert.Equal(t, 30, c.MaxArticles())
	assert.Equal(t, 24, c.MaxAgeHours())
	assert.Equal(t, []string{"광고", "협찬", "제휴", "프로모션"}, c.ExcludeCues())
}

func TestKeywordsForCategory_Unknown(t *testing.T) {
	_, err := Default().KeywordsForCategory("스포츠")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestPlan(t *testing.T) {
	c, err := LoadFile(writeFile(t, sampleYAML))
	require.NoError(t, err)

	all, err := c.Plan()
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Category: "그룹사", Keyword: "현대백화점"},
		{Category: "그룹사", Keyword: "현대홈쇼핑"},
		{Category: "업계", Keyword: "식권"},
	}, all)

	// selection keeps catalog order regardless of argument order
	some, err := c.Plan("업계", "그룹사")
	require.NoError(t, err)
	assert.Equal(t, all, some)

	only, err := c.Plan("업계")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Category: "업계", Keyword: "식권"}}, only)

	_, err = c.Plan("없음")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestFeeds(t *testing.T) {
	c, err := LoadFile(writeFile(t, sampleYAML))
	require.NoError(t, err)

	feeds, err := c.Feeds()
	require.NoError(t, err)
	assert.Equal(t, []FeedSource{{Category: "읽을거리", URL: "https://example.com/rss"}}, feeds)

	feeds, err = c.Feeds("그룹사")
	require.NoError(t, err)
	assert.Empty(t, feeds)
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Default()
	kws, err := c.KeywordsForCategory("그룹사")
	require.NoError(t, err)
	kws[0] = "changed"

	again, err := c.KeywordsForCategory("그룹사")
	require.NoError(t, err)
	assert.Equal(t, "현대백화점", again[0])
}
