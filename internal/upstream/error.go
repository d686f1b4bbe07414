// Package upstream describes failures of the third-party HTTP APIs the bot
// talks to (news search, summarization, chat delivery).
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrTimeout matches any *Error produced by a deadline or transport timeout.
var ErrTimeout = errors.New("upstream timeout")

// Error is a provider failure: non-2xx status, timeout or a provider-level
// rejection reported inside a 2xx body.
type Error struct {
	Provider   string
	Code       int // HTTP status, 0 when no response was received
	Message    string
	Timeout    bool
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timeout: %s", e.Provider, e.Message)
	}
	if e.Code == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrTimeout) match timeout errors.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

// Retryable reports whether repeating the call may succeed: rate limiting,
// server-side failures and timeouts. Every other status is terminal.
func (e *Error) Retryable() bool {
	if e.Timeout {
		return true
	}
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// FromResponse builds an *Error from a non-2xx response, reading at most 1KB
// of the body for the message. The caller still owns resp.Body.
func FromResponse(provider string, resp *http.Response) *Error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.TrimSpace(string(payload))
	if msg == "" {
		msg = resp.Status
	}
	return &Error{
		Provider:   provider,
		Code:       resp.StatusCode,
		Message:    msg,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// Wrap converts a transport error into an *Error. Deadline and network
// timeouts are flagged; an existing *Error is returned unchanged.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}
	if IsTimeoutCause(err) {
		return &Error{Provider: provider, Message: err.Error(), Timeout: true}
	}
	return &Error{Provider: provider, Message: err.Error()}
}

// IsTimeoutCause reports whether err stems from a context deadline or a
// network timeout.
func IsTimeoutCause(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsRetryable reports whether err is an *Error worth retrying.
func IsRetryable(err error) bool {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	return false
}

// RetryAfterOf returns the provider-requested delay carried by err, if any.
func RetryAfterOf(err error) time.Duration {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.RetryAfter
	}
	return 0
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
