package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks fail-open configuration loading for one component:
//
//   - {component}_config_load_timestamp
//   - {component}_config_fallbacks_total{field}
//   - {component}_config_fallback_active
type ConfigMetrics struct {
	LoadTimestamp  prometheus.Gauge
	FallbacksTotal *prometheus.CounterVec
	FallbackActive prometheus.Gauge
}

// NewConfigMetrics registers the component's collectors on reg.
func NewConfigMetrics(reg prometheus.Registerer, component string) *ConfigMetrics {
	f := promauto.With(reg)
	return &ConfigMetrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix timestamp of the last " + component + " configuration load",
		}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Total number of " + component + " settings replaced by their default",
		}, []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 if the last " + component + " configuration load used any fallback",
		}),
	}
}

// RecordLoadTimestamp marks a completed configuration load.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordFallback counts one rejected setting.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive sets the fallback gauge.
func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}

// Tracker applies loaded settings while logging and counting fallbacks.
// m may be nil when a caller has no metrics to report to.
type Tracker struct {
	logger   *slog.Logger
	metrics  *ConfigMetrics
	fallback bool
}

// NewTracker returns a Tracker writing to logger and m.
func NewTracker(logger *slog.Logger, m *ConfigMetrics) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{logger: logger, metrics: m}
}

// Apply returns r.Value and reports r's fallback under field.
func Apply[T any](t *Tracker, field string, r Result[T]) T {
	if r.FallbackApplied {
		t.fallback = true
		t.logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", r.Warning))
		if t.metrics != nil {
			t.metrics.RecordFallback(field)
		}
	}
	return r.Value
}

// Done publishes the load timestamp and whether any fallback happened.
func (t *Tracker) Done() bool {
	if t.metrics != nil {
		t.metrics.SetFallbackActive(t.fallback)
		t.metrics.RecordLoadTimestamp()
	}
	return t.fallback
}
