package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbot/internal/upstream"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>읽을거리</title>
  <item>
    <title>리테일 &lt;b&gt;트렌드&lt;/b&gt; 정리</title>
    <link>https://blog.example.com/1</link>
    <description>요약 설명</description>
    <pubDate>Mon, 06 Jan 2025 09:00:00 +0900</pubDate>
  </item>
  <item>
    <title>날짜 없는 글</title>
    <link>https://blog.example.com/2</link>
  </item>
</channel>
</rss>`

func TestRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	items, err := NewReader(srv.Client()).Read(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "리테일 트렌드 정리", items[0].Title)
	assert.Equal(t, "https://blog.example.com/1", items[0].URL)
	assert.Equal(t, "요약 설명", items[0].Description)
	got, err := time.Parse(time.RFC3339, items[0].PubDate)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))

	assert.Empty(t, items[1].PubDate)
}

func TestRead_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewReader(nil).Read(context.Background(), srv.URL)

	var ue *upstream.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusServiceUnavailable, ue.Code)
	assert.Equal(t, "feed", ue.Provider)
}
