package slo

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"sync"
	"time"
)

// DefaultMaxSamples bounds the latencies kept between two flushes.
const DefaultMaxSamples = 10000

// Snapshot is the indicator set computed by one Flush.
type Snapshot struct {
	Requests     int
	Errors       int
	Availability float64
	ErrorRate    float64
	LatencyP95   float64
	LatencyP99   float64
}

// Tracker aggregates request outcomes over a window and publishes the
// indicators when flushed. Latencies beyond maxSamples are dropped from the
// percentile estimate but still counted.
type Tracker struct {
	mu         sync.Mutex
	requests   int
	errors     int
	latencies  []float64
	maxSamples int
	logger     *slog.Logger
}

// NewTracker creates a Tracker keeping at most maxSamples latencies per window.
func NewTracker(maxSamples int) *Tracker {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Tracker{maxSamples: maxSamples}
}

// WithLogger makes Run warn about windows that miss a target.
func (t *Tracker) WithLogger(logger *slog.Logger) *Tracker {
	t.logger = logger
	return t
}

// Observe records one answered request.
func (t *Tracker) Observe(status int, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests++
	if status >= http.StatusInternalServerError {
		t.errors++
	}
	if len(t.latencies) < t.maxSamples {
		t.latencies = append(t.latencies, d.Seconds())
	}
}

// Flush computes the indicators of the current window, updates the gauges and
// starts a new window. An empty window reports full availability.
func (t *Tracker) Flush() Snapshot {
	t.mu.Lock()
	requests, errs, latencies := t.requests, t.errors, t.latencies
	t.requests, t.errors, t.latencies = 0, 0, nil
	t.mu.Unlock()

	snap := Snapshot{Requests: requests, Errors: errs, Availability: 1}
	if requests > 0 {
		snap.ErrorRate = float64(errs) / float64(requests)
		snap.Availability = 1 - snap.ErrorRate
	}
	slices.Sort(latencies)
	snap.LatencyP95 = percentile(latencies, 0.95)
	snap.LatencyP99 = percentile(latencies, 0.99)

	publish(snap)
	return snap
}

// Run flushes every interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := t.Flush()
			if t.logger != nil && snap.Requests > 0 && !snap.Met() {
				t.logger.Warn("slo targets missed",
					slog.Int("requests", snap.Requests),
					slog.Float64("availability", snap.Availability),
					slog.Float64("p95_seconds", snap.LatencyP95),
					slog.Float64("p99_seconds", snap.LatencyP99))
			}
		}
	}
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}
