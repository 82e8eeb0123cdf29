// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by every request to one upstream.
// It is safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows ratePerSecond sustained requests with the given
// burst. arXiv asks for at most one request every three seconds, which is
// NewRateLimiter(1.0/3, 1).
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a request is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
