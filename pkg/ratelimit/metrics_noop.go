package ratelimit

import "time"

// NoOpMetrics implements Metrics with no-op methods.
//
// It is the default for limiters built without WithMetrics and is useful in
// tests and benchmarks.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics instance.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

// RecordAllowed is a no-op implementation.
func (m *NoOpMetrics) RecordAllowed(limiterType string) {}

// RecordDenied is a no-op implementation.
func (m *NoOpMetrics) RecordDenied(limiterType string) {}

// RecordCheckDuration is a no-op implementation.
func (m *NoOpMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {}

// SetActiveKeys is a no-op implementation.
func (m *NoOpMetrics) SetActiveKeys(limiterType string, count int) {}

// RecordEviction is a no-op implementation.
func (m *NoOpMetrics) RecordEviction(limiterType string, count int) {}
