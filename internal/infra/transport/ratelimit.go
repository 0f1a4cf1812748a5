package transport

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter implements a token bucket for pacing outbound API calls.
// It keeps the client under the messaging API's published limits so that
// 429 responses stay exceptional rather than routine.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a new RateLimiter with the specified rate and burst
// capacity.
//
// Parameters:
//   - requestsPerSecond: Maximum sustained request rate (e.g., 1.0 for 1 request per second)
//   - burst: Maximum number of requests that can be made in a burst (e.g., 3)
//
// The token bucket algorithm allows up to 'burst' requests immediately,
// then refills tokens at 'requestsPerSecond' rate.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := rate.Limit(requestsPerSecond)
	l := rate.NewLimiter(r, burst)

	return &RateLimiter{
		rate:    r,
		burst:   burst,
		limiter: l,
	}
}

// Wait blocks until a token is available or the context is canceled.
// It should be called before making a rate-limited request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
