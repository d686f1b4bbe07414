package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deusflow/newsbot/internal/catalog"
	"github.com/deusflow/newsbot/internal/curator"
	"github.com/deusflow/newsbot/internal/review"
	"github.com/deusflow/newsbot/internal/upstream"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// classify maps a service error to an HTTP status and error type.
// Timeouts are checked before the generic upstream case.
func classify(err error) (int, string) {
	var ue *upstream.Error
	switch {
	case errors.Is(err, catalog.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	case errors.Is(err, curator.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, upstream.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &ue):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Type: kind, Message: msg}})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	entry := s.log.WithField("request_id", requestID(r.Context())).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Info("Request rejected")
	}
	writeError(w, status, kind, err.Error())
}
