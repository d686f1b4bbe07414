package search

import (
	"context"
	"strings"
	"time"
)

var demoHeadlines = []Hit{
	{Title: "현대백화점그룹, 식권대장과 협력 강화", URL: "http://example.com/a"},
	{Title: "기업 복지 포인트, 이커머스와 연계 확대", URL: "http://example.com/b"},
	{Title: "[광고] 현대백화점 최고의 프로모션 소식", URL: "http://example.com/c"},
	{Title: "현대백화점그룹, 식권대장과 협력 강화", URL: "http://example.com/a-dup"},
	{Title: "밀키트 수요 증가와 푸드테크 트렌드", URL: "http://example.com/d"},
}

// Demo serves a fixed set of headlines so the curator UI works without API
// credentials. A hit is returned for every headline containing the query.
type Demo struct {
	Now func() time.Time
}

func (d Demo) Search(ctx context.Context, req Request) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	stamp := now().Format(time.RFC1123Z)

	var hits []Hit
	for _, h := range demoHeadlines {
		if !strings.Contains(h.Title, req.Query) {
			continue
		}
		h.PubDate = stamp
		hits = append(hits, h)
		if req.Display > 0 && len(hits) == req.Display {
			break
		}
	}
	return hits, nil
}
