package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Status:     "429 Too Many Requests",
		Header:     http.Header{"Retry-After": []string{"3"}},
		Body:       io.NopCloser(strings.NewReader(" slow down ")),
	}

	err := FromResponse("slack", resp)
	assert.Equal(t, 429, err.Code)
	assert.Equal(t, "slow down", err.Message)
	assert.Equal(t, 3*time.Second, err.RetryAfter)
	assert.True(t, err.Retryable())
	assert.Equal(t, "slack: status 429: slow down", err.Error())
}

func TestFromResponse_EmptyBodyUsesStatus(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadRequest,
		Status:     "400 Bad Request",
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
	}

	err := FromResponse("naver", resp)
	assert.Equal(t, "400 Bad Request", err.Message)
	assert.False(t, err.Retryable())
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{&Error{Code: 429}, true},
		{&Error{Code: 500}, true},
		{&Error{Code: 503}, true},
		{&Error{Code: 400}, false},
		{&Error{Code: 401}, false},
		{&Error{Code: 404}, false},
		{&Error{Timeout: true}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Retryable(), "code=%d timeout=%v", tc.err.Code, tc.err.Timeout)
	}
}

func TestWrap_DeadlineIsTimeout(t *testing.T) {
	err := Wrap("openai", fmt.Errorf("post: %w", context.DeadlineExceeded))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, IsRetryable(err))
}

func TestWrap_KeepsExistingError(t *testing.T) {
	orig := &Error{Provider: "slack", Code: 400, Message: "channel_not_found"}
	err := Wrap("other", fmt.Errorf("publish: %w", orig))

	var ue *Error
	require.True(t, errors.As(err, &ue))
	assert.Same(t, orig, ue)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap("x", nil))
}
