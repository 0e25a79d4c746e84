// Package slo publishes the gateway's service level indicators as gauges.
// Assessments fan out to the bureau, so the latency targets are looser than
// those of a pure in-process API.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Targets of the credit gateway.
const (
	AvailabilitySLO = 99.5  // percent of non-5xx answers
	LatencyP95SLO   = 1.0   // seconds
	LatencyP99SLO   = 3.0   // seconds
	ErrorRateSLO    = 0.005 // 5xx ratio
)

// Gauges refreshed by Tracker.Flush.
var (
	SLOAvailability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Share of non-5xx answers in the last window (0-1), target 0.995",
	})
	SLOLatencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "p95 request latency in the last window, target 1s",
	})
	SLOLatencyP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "p99 request latency in the last window, target 3s",
	})
	SLOErrorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "5xx ratio in the last window (0-1), target 0.005",
	})
	SLOErrorBudgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_budget_remaining_ratio",
		Help: "Share of the window's error budget left; negative once it is overspent",
	})
)

// BudgetRemaining is 1 with no errors, 0 at exactly the target error rate and
// negative past it.
func BudgetRemaining(errorRate float64) float64 {
	return 1 - errorRate/ErrorRateSLO
}

// Met reports whether s is within every target.
func (s Snapshot) Met() bool {
	return s.Availability*100 >= AvailabilitySLO &&
		s.LatencyP95 <= LatencyP95SLO &&
		s.LatencyP99 <= LatencyP99SLO
}

func publish(s Snapshot) {
	SLOAvailability.Set(s.Availability)
	SLOErrorRate.Set(s.ErrorRate)
	SLOLatencyP95.Set(s.LatencyP95)
	SLOLatencyP99.Set(s.LatencyP99)
	SLOErrorBudgetRemaining.Set(BudgetRemaining(s.ErrorRate))
}
