// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited, retrying HTTP client used for
// arXiv metadata and PDF downloads.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryDelay is the fixed wait between attempts when the server does not
// send Retry-After. Tests override this to avoid real sleeps.
var RetryDelay = 3 * time.Second

const defaultMaxRetries = 3

// Client wraps an http.Client with a token-bucket limiter and a bounded,
// fixed-delay retry. It retries transport errors and HTTP 429, 502, 503 and
// 504; every other status is returned to the caller as-is.
type Client struct {
	HTTP       *http.Client
	Limiter    *RateLimiter
	MaxRetries int
	UserAgent  string
}

// NewClient returns a Client with the given timeout and limiter. A nil
// limiter disables rate limiting.
func NewClient(timeout time.Duration, limiter *RateLimiter, userAgent string) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		Limiter:   limiter,
		UserAgent: userAgent,
	}
}

// Get issues a GET for url through Do.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(ctx, req)
}

// Do executes req, waiting on the limiter before every attempt. After the
// retries are exhausted the last retryable response is returned so the
// caller can inspect its status; a final transport error is returned as an
// error. If ctx is cancelled during a wait, ctx.Err() is returned.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	for attempt := 0; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.HTTP.Do(req.Clone(ctx))
		wait := RetryDelay
		switch {
		case err != nil:
			if ctx.Err() != nil || attempt >= maxRetries {
				return nil, err
			}
		case !retryable(resp.StatusCode):
			return resp, nil
		case attempt >= maxRetries:
			return resp, nil
		default:
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = d
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a StatusError for HTTP 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
