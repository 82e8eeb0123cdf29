// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny delay so tests finish quickly.
	RetryDelay = time.Millisecond
}

func statusServer(t *testing.T, calls *int32, status func(n int32) int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.WriteHeader(status(n))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClientDo_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, func(int32) int { return http.StatusOK })

	c := &Client{HTTP: ts.Client()}
	resp, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientDo_RetriesTransientStatuses(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var calls int32
			ts := statusServer(t, &calls, func(n int32) int {
				if n <= 2 {
					return code
				}
				return http.StatusOK
			})

			c := &Client{HTTP: ts.Client(), MaxRetries: 5}
			resp, err := c.Get(context.Background(), ts.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		})
	}
}

func TestClientDo_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, func(int32) int { return http.StatusServiceUnavailable })

	c := &Client{HTTP: ts.Client(), MaxRetries: 2}
	resp, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	// 1 initial + 2 retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDo_DefaultMaxRetries(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, func(int32) int { return http.StatusTooManyRequests })

	c := &Client{HTTP: ts.Client()}
	resp, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1+defaultMaxRetries), atomic.LoadInt32(&calls))
}

func TestClientDo_NonRetryablePassesThrough(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, func(int32) int { return http.StatusInternalServerError })

	c := &Client{HTTP: ts.Client(), MaxRetries: 5}
	resp, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientDo_ContextCancelledDuringWait(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, func(int32) int { return http.StatusTooManyRequests })

	old := RetryDelay
	RetryDelay = 500 * time.Millisecond
	defer func() { RetryDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := &Client{HTTP: ts.Client(), MaxRetries: 5}
	_, err := c.Get(ctx, ts.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientDo_SetsUserAgent(t *testing.T) {
	var got atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), UserAgent: "paper-digest/test"}
	resp, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "paper-digest/test", got.Load())
}

func TestRetryAfter(t *testing.T) {
	d, ok := retryAfter("7")
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	_, ok = retryAfter("")
	assert.False(t, ok)
	_, ok = retryAfter("Wed, 21 Oct 2015 07:28:00 GMT")
	assert.False(t, ok)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&StatusError{URL: "x", StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&StatusError{URL: "x", StatusCode: http.StatusForbidden}))
	assert.False(t, IsNotFound(nil))
}

func TestRateLimiterWaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	require.NoError(t, rl.Wait(context.Background()), "first token is available immediately")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx))
}
