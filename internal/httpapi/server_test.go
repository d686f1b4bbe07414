package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbot/internal/catalog"
	"github.com/deusflow/newsbot/internal/curator"
	"github.com/deusflow/newsbot/internal/news"
	"github.com/deusflow/newsbot/internal/publish"
	"github.com/deusflow/newsbot/internal/review"
	"github.com/deusflow/newsbot/internal/search"
	"github.com/deusflow/newsbot/internal/summarize"
	"github.com/deusflow/newsbot/internal/upstream"
)

type staticSearcher map[string][]search.Hit

func (s staticSearcher) Search(ctx context.Context, req search.Request) ([]search.Hit, error) {
	return s[req.Query], nil
}

type errSummarizer struct{ err error }

func (e errSummarizer) Summarize(context.Context, string, string) (string, error) {
	return "", e.err
}

type panicPublisher struct{}

func (panicPublisher) Publish(context.Context, []news.Article, publish.FormatOptions) (publish.Result, error) {
	panic("boom")
}

type fixture struct {
	summarizer summarize.Summarizer
	publisher  publish.Publisher
}

func newFixture(t *testing.T, opts ...func(*fixture)) *httptest.Server {
	t.Helper()
	log, _ := test.NewNullLogger()

	f := &fixture{summarizer: summarize.Stub{}, publisher: publish.NewPreview(publish.StyleSlack, log)}
	for _, o := range opts {
		o(f)
	}

	cat, err := catalog.New(catalog.File{Categories: []catalog.CategoryFile{
		{Name: "그룹사", Keywords: []string{"현대백화점"}},
		{Name: "업계", Keywords: []string{"식권"}},
	}})
	require.NoError(t, err)

	searcher := staticSearcher{
		"현대백화점": {
			{Title: "현대백화점 신규 매장", URL: "http://news/1"},
			{Title: "현대백화점 신규 매장", URL: "http://news/1-copy"},
		},
		"식권": {{Title: "식권 시장 <b>성장</b>", URL: "http://news/2"}},
	}

	svc := curator.New(curator.Options{
		Catalog:    cat,
		Store:      review.NewStore(),
		Fetcher:    news.NewFetcher(searcher, nil, log),
		Summarizer: f.summarizer,
		Publisher:  f.publisher,
		Log:        log,
	})

	s, err := New(svc, log)
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var raw interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		switch v := raw.(type) {
		case map[string]interface{}:
			out = v
		case []interface{}:
			out = map[string]interface{}{"items": v}
		}
	}
	return resp, out
}

func errType(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	s, _ := e["type"].(string)
	return s
}

func TestCollectReviewPublishFlow(t *testing.T) {
	srv := newFixture(t)

	resp, body := do(t, srv, http.MethodPost, "/api/collect", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(1), body["duplicates_dropped"])
	assert.Equal(t, []interface{}{}, body["partial_failures"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = do(t, srv, http.MethodGet, "/api/articles?category="+url.QueryEscape("업계"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "http://news/2", items[0].(map[string]interface{})["url"])

	resp, body = do(t, srv, http.MethodPost, "/api/articles/select", `{"url":"http://news/1","selected":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["updated"])

	resp, body = do(t, srv, http.MethodPost, "/api/summarize", `{"url":"http://news/1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://news/1 요약 완료 (테스트)", body["summary"])

	resp, body = do(t, srv, http.MethodPost, "/api/publish", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "preview", body["mode"])
	assert.Contains(t, body["messageText"], "현대백화점 신규 매장")
	assert.Contains(t, body["messageText"], "요약 완료")

	resp, body = do(t, srv, http.MethodPost, "/api/articles/delete", `{"url":"http://news/2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["deleted"])

	resp, body = do(t, srv, http.MethodPost, "/api/articles/delete", `{"url":"http://news/2"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errType(body))

	_, body = do(t, srv, http.MethodGet, "/api/articles", "")
	assert.Len(t, body["items"], 1)
}

func TestErrorMapping(t *testing.T) {
	srv := newFixture(t)

	resp, body := do(t, srv, http.MethodGet, "/api/articles?category="+url.QueryEscape("해외"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unknown_category", errType(body))

	resp, body = do(t, srv, http.MethodPost, "/api/collect", `{"categories":["해외"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unknown_category", errType(body))

	resp, body = do(t, srv, http.MethodPost, "/api/collect", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", errType(body))

	resp, body = do(t, srv, http.MethodPost, "/api/summarize", `{"url":"http://news/none"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errType(body))

	resp, body = do(t, srv, http.MethodPost, "/api/summarize", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", errType(body))

	resp, body = do(t, srv, http.MethodPost, "/api/articles/select", `{"url":"http://missing","selected":true}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errType(body))

	resp, body = do(t, srv, http.MethodPost, "/api/articles/delete", `{"url":"http://missing"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errType(body))

	resp, _ = do(t, srv, http.MethodGet, "/api/collect", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSummarizeUpstreamErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{&upstream.Error{Provider: "openai", Code: 500, Message: "down"}, http.StatusBadGateway, "upstream_error"},
		{&upstream.Error{Provider: "openai", Timeout: true, Message: "deadline"}, http.StatusGatewayTimeout, "timeout"},
		{fmt.Errorf("scrape: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			srv := newFixture(t, func(f *fixture) { f.summarizer = errSummarizer{err: tc.err} })

			resp, _ := do(t, srv, http.MethodPost, "/api/collect", "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, body := do(t, srv, http.MethodPost, "/api/summarize", `{"url":"http://news/1"}`)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.kind, errType(body))
		})
	}
}

func TestPanicRecovered(t *testing.T) {
	srv := newFixture(t, func(f *fixture) { f.publisher = panicPublisher{} })

	resp, body := do(t, srv, http.MethodPost, "/api/publish", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal", errType(body))
}

func TestPages(t *testing.T) {
	srv := newFixture(t)
	do(t, srv, http.MethodPost, "/api/collect", "")

	resp, err := srv.Client().Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, err = srv.Client().Get(srv.URL + "/review?category=" + url.QueryEscape("그룹사"))
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "현대백화점 신규 매장")
	assert.NotContains(t, string(page), "http://news/2")

	resp, _ = do(t, srv, http.MethodGet, "/review?category="+url.QueryEscape("해외"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newFixture(t)

	resp, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	do(t, srv, http.MethodPost, "/api/collect", "")
	resp, body = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["collect_runs"])
	assert.Equal(t, float64(2), body["articles_in_review"])

	resp, body = do(t, srv, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "그룹사", items[0].(map[string]interface{})["name"])
}
