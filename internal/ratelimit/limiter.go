// Package ratelimit paces outbound upstream calls with a token bucket.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound calls. Waits honour the caller's context, so a
// pacing delay never outlives the call deadline.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter allowing requests per period with a burst of requests.
func New(requests int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requests)/period.Seconds()), requests),
	}
}

// Wait blocks until a token is available or ctx is done. It fails immediately
// when the required wait would exceed ctx's deadline.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
