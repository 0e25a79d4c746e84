package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by the webhook notifiers.
// Wait paces deliveries to a webhook's documented limit; TryAllow lets the
// alerter drop alerts while a breaker is flapping.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows burst events immediately and refills at
// eventsPerSecond afterwards.
//
// Example:
//
//	limiter := NewRateLimiter(1.0, 1) // Slack: 1 message per second
func NewRateLimiter(eventsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
}

// Allow blocks until a token is available or ctx is done.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// TryAllow takes a token if one is available without waiting.
func (r *RateLimiter) TryAllow() bool {
	return r.limiter.Allow()
}
