package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(codes ...int) RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		RetryStatusCodes: codes,
	}
}

func TestRetryHandler_RecoversAfterRetryableStatus(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusTooManyRequests)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
}

func TestRetryHandler_MaxRetriesExceeded(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusServiceUnavailable)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.Error(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))

	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestRetryHandler_NonRetryableStatusReturnsImmediately(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusServiceUnavailable)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
}

func TestRetryHandler_ContextCancelled(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{MaxRetries: 3, BaseDelay: time.Hour, RetryStatusCodes: []int{503}}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	doFunc := func(*HTTPRequest) (*HTTPResponse, error) {
		calls++
		cancel()
		return &HTTPResponse{StatusCode: 503}, nil
	}

	_, err := handler.DoWithRetry(ctx, doFunc, &HTTPRequest{URL: "http://example.invalid"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryHandler_ShouldRetry(t *testing.T) {
	handler := NewRetryHandler(fastRetry(http.StatusServiceUnavailable), zerolog.Nop())

	assert.True(t, handler.ShouldRetry(http.StatusServiceUnavailable, 0))
	assert.True(t, handler.ShouldRetry(http.StatusServiceUnavailable, 1))
	assert.False(t, handler.ShouldRetry(http.StatusServiceUnavailable, 2), "attempts exhausted")
	assert.False(t, handler.ShouldRetry(http.StatusNotFound, 0))
}

func TestRetryHandler_CalculateDelay(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries: 5,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
	}, zerolog.Nop())

	assert.Equal(t, 100*time.Millisecond, handler.CalculateDelay(0))
	assert.Equal(t, 200*time.Millisecond, handler.CalculateDelay(1))
	assert.Equal(t, 400*time.Millisecond, handler.CalculateDelay(2))
	assert.Equal(t, time.Second, handler.CalculateDelay(6))

	assert.False(t, handler.ShouldRetry(http.StatusServiceUnavailable, 0))
}

func TestRetryHandler_JitterWithTinyDelay(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:   2,
		BaseDelay:    time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		EnableJitter: true,
	}, zerolog.Nop())

	assert.NotPanics(t, func() { handler.CalculateDelay(1) })
}
