package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deusflow/newsbot/internal/curator"
	"github.com/deusflow/newsbot/internal/news"
	"github.com/deusflow/newsbot/internal/review"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON body into v. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON body: %v", curator.ErrBadRequest, err)
	}
	return nil
}

type urlRequest struct {
	URL string `json:"url"`
}

func (u urlRequest) validate() error {
	if strings.TrimSpace(u.URL) == "" {
		return fmt.Errorf("%w: url is required", curator.ErrBadRequest)
	}
	return nil
}

type selectRequest struct {
	URL      string `json:"url"`
	Selected *bool  `json:"selected"`
}

type indexPage struct {
	Categories []curator.CategoryInfo
	Total      int
}

type reviewGroup struct {
	Name     string
	Articles []news.Article
}

type reviewPage struct {
	Category   string
	Categories []curator.CategoryInfo
	Groups     []reviewGroup
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", indexPage{
		Categories: s.svc.Categories(),
		Total:      len(s.svc.ListArticles()),
	})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	page := reviewPage{Category: category, Categories: s.svc.Categories()}
	if category != "" {
		articles, err := s.svc.ListByCategory(category)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page.Groups = []reviewGroup{{Name: category, Articles: articles}}
	} else {
		byCat := map[string][]news.Article{}
		for _, a := range s.svc.ListArticles() {
			byCat[a.Category] = append(byCat[a.Category], a)
		}
		for _, c := range page.Categories {
			if len(byCat[c.Name]) > 0 {
				page.Groups = append(page.Groups, reviewGroup{Name: c.Name, Articles: byCat[c.Name]})
			}
		}
	}
	s.render(w, r, "review.html", page)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf strings.Builder
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, buf.String())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Categories())
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var plan curator.Plan
	if err := decodeBody(r, &plan); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.svc.Collect(r.Context(), plan)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSON(w, http.StatusOK, nonNil(s.svc.ListArticles()))
		return
	}

	articles, err := s.svc.ListByCategory(category)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(articles))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.svc.DeleteArticle(req.URL) {
		s.fail(w, r, fmt.Errorf("%w: %s", review.ErrNotFound, req.URL))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := (urlRequest{URL: req.URL}).validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	selected := true
	if req.Selected != nil {
		selected = *req.Selected
	}
	if !s.svc.SetSelected(req.URL, selected) {
		s.fail(w, r, fmt.Errorf("%w: %s", review.ErrNotFound, req.URL))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.svc.SummarizeAndStore(r.Context(), req.URL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.PublishSelected(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.Stats()

	status, code := "ok", http.StatusOK
	if !s.svc.Healthy() {
		status, code = "error", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func nonNil(a []news.Article) []news.Article {
	if a == nil {
		return []news.Article{}
	}
	return a
}
