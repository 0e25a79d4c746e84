package sentinel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records bureau request outcomes. Endpoint labels are the resource
// names (person, debts, history, report, alerts, info), never subject ids.
type Metrics interface {
	// RecordRequest records one HTTP attempt and its outcome kind.
	RecordRequest(endpoint, outcome string, duration time.Duration)

	// RecordRetry counts a retry scheduled after a transient failure.
	RecordRetry(endpoint string)

	// RecordCache records a cache lookup for a bureau resource.
	RecordCache(endpoint string, hit bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, string, time.Duration) {}
func (noopMetrics) RecordRetry(string)                          {}
func (noopMetrics) RecordCache(string, bool)                    {}

// PrometheusMetrics implements Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	cache    *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_requests_total",
				Help: "Total number of credit bureau HTTP attempts by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_request_duration_seconds",
				Help:    "Credit bureau HTTP attempt duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_retries_total",
				Help: "Total number of credit bureau retries after transient failures",
			},
			[]string{"endpoint"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_cache_lookups_total",
				Help: "Total number of cached bureau lookups by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.retries, m.cache)
	return m
}

func (m *PrometheusMetrics) RecordRequest(endpoint, outcome string, duration time.Duration) {
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRetry(endpoint string) {
	m.retries.WithLabelValues(endpoint).Inc()
}

func (m *PrometheusMetrics) RecordCache(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(endpoint, result).Inc()
}
