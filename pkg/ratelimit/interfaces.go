// Package ratelimit provides framework-agnostic per-subject rate limiting.
//
// A subject (for example a DNI being looked up) gets a sliding window of
// request timestamps. Windows are pruned lazily whenever the subject is
// touched, and a subject whose window empties is dropped from the store, so
// memory is bounded by the set of recently active subjects.
package ratelimit

import (
	"context"
	"time"
)

// Store holds the sliding windows. All methods must be thread-safe.
type Store interface {
	// CheckAndAdd prunes the key's window to timestamps after cutoff, then
	// records timestamp if fewer than limit remain. The check and the add
	// happen under a single critical section so two concurrent callers can
	// never both observe "below limit" for the last free slot.
	//
	// It returns whether the request was recorded, the window size after the
	// operation and the oldest timestamp still in the window (zero if empty).
	CheckAndAdd(ctx context.Context, key string, timestamp, cutoff time.Time, limit int) (allowed bool, count int, oldest time.Time, err error)

	// Count prunes the key's window to timestamps after cutoff and returns
	// how many remain, without recording anything.
	Count(ctx context.Context, key string, cutoff time.Time) (int, error)

	// KeyCount returns the number of subjects currently tracked.
	KeyCount(ctx context.Context) (int, error)
}

// Metrics records limiter outcomes.
type Metrics interface {
	RecordAllowed(limiterType string)
	RecordDenied(limiterType string)
	RecordCheckDuration(limiterType string, duration time.Duration)
	SetActiveKeys(limiterType string, count int)
	RecordEviction(limiterType string, count int)
}

// Clock provides an abstraction for time operations to enable testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}
