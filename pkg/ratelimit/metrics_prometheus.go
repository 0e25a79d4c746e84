package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics using Prometheus.
//
// Metrics are registered on the registerer passed to NewPrometheusMetrics,
// so tests can use an isolated prometheus.NewRegistry().
type PrometheusMetrics struct {
	// requestsTotal counts checks by limiter type and status ("allowed" or "denied").
	requestsTotal *prometheus.CounterVec

	// checkDuration tracks the duration of rate limit checks. Checks are
	// in-memory, so buckets start at half a millisecond.
	checkDuration *prometheus.HistogramVec

	// activeKeys tracks the number of subjects with a non-empty window.
	activeKeys *prometheus.GaugeVec

	// evictionsTotal counts subjects dropped by LRU eviction.
	evictionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates the rate limit metrics and registers them on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subject_rate_limit_requests_total",
				Help: "Total rate limit checks by limiter type and status",
			},
			[]string{"limiter_type", "status"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subject_rate_limit_check_duration_seconds",
				Help:    "Duration of rate limit check operations",
				Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
			[]string{"limiter_type"},
		),
		activeKeys: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "subject_rate_limit_active_keys",
				Help: "Current number of tracked subjects by limiter type",
			},
			[]string{"limiter_type"},
		),
		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subject_rate_limit_evictions_total",
				Help: "Total LRU evictions by limiter type",
			},
			[]string{"limiter_type"},
		),
	}

	reg.MustRegister(m.requestsTotal, m.checkDuration, m.activeKeys, m.evictionsTotal)
	return m
}

// RecordAllowed records an allowed request.
func (m *PrometheusMetrics) RecordAllowed(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed").Inc()
}

// RecordDenied records a denied request.
func (m *PrometheusMetrics) RecordDenied(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied").Inc()
}

// RecordCheckDuration records how long a check took.
func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(duration.Seconds())
}

// SetActiveKeys records the number of tracked subjects.
func (m *PrometheusMetrics) SetActiveKeys(limiterType string, count int) {
	m.activeKeys.WithLabelValues(limiterType).Set(float64(count))
}

// RecordEviction records evicted subjects.
func (m *PrometheusMetrics) RecordEviction(limiterType string, count int) {
	m.evictionsTotal.WithLabelValues(limiterType).Add(float64(count))
}
