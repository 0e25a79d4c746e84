package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitDecision represents the result of a rate limit check.
type RateLimitDecision struct {
	// Key is the subject the decision applies to.
	Key string

	// Allowed indicates whether the request was recorded.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is how many more requests fit in the current window.
	Remaining int

	// ResetAt is when the oldest request in the window leaves it and a slot frees up.
	ResetAt time.Time

	// RetryAfter is the time until ResetAt for denied requests, 0 when allowed.
	RetryAfter time.Duration

	// LimiterType identifies which limiter produced the decision.
	LimiterType string
}

// String returns a human-readable representation of the decision.
func (d *RateLimitDecision) String() string {
	if d.Allowed {
		return fmt.Sprintf(
			"RateLimitDecision{Allowed: true, Key: %s, Type: %s, Remaining: %d/%d, ResetAt: %s}",
			d.Key, d.LimiterType, d.Remaining, d.Limit, d.ResetAt.Format(time.RFC3339),
		)
	}

	return fmt.Sprintf(
		"RateLimitDecision{Allowed: false, Key: %s, Type: %s, Limit: %d, RetryAfter: %s, ResetAt: %s}",
		d.Key, d.LimiterType, d.Limit, d.RetryAfter.String(), d.ResetAt.Format(time.RFC3339),
	)
}

// ResetAtUnix returns the reset time as a Unix timestamp, for X-RateLimit-Reset.
func (d *RateLimitDecision) ResetAtUnix() int64 {
	return d.ResetAt.Unix()
}

// RetryAfterSeconds returns the retry delay rounded up to whole seconds, for Retry-After.
func (d *RateLimitDecision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	seconds := int64(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		seconds++
	}
	return seconds
}

func newAllowedDecision(key, limiterType string, limit, remaining int, resetAt time.Time) *RateLimitDecision {
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitDecision{
		Key:         key,
		Allowed:     true,
		Limit:       limit,
		Remaining:   remaining,
		ResetAt:     resetAt,
		LimiterType: limiterType,
	}
}

func newDeniedDecision(key, limiterType string, limit int, resetAt, now time.Time) *RateLimitDecision {
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &RateLimitDecision{
		Key:         key,
		Allowed:     false,
		Limit:       limit,
		ResetAt:     resetAt,
		RetryAfter:  retryAfter,
		LimiterType: limiterType,
	}
}
