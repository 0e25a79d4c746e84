package worker

import (
	"credit-gateway/internal/pkg/config"
	"credit-gateway/internal/usecase/creditcheck"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics are the Prometheus metrics of the re-check worker.
//
// Configuration metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_fallbacks_total{field}
//   - worker_config_fallback_active
//
// Job metrics:
//   - worker_cron_job_runs_total{status}: started, success, failure
//   - worker_cron_job_duration_seconds
//   - worker_cron_job_clients_processed_total{outcome}: checked, failed, skipped
//   - worker_cron_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal             *prometheus.CounterVec
	CronJobDurationSeconds       prometheus.Histogram
	CronJobClientsProcessedTotal *prometheus.CounterVec
	CronJobLastSuccessTimestamp  prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics on reg.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics(reg, "worker"),

		CronJobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status",
		}, []string{"status"}),

		CronJobDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobClientsProcessedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_clients_processed_total",
			Help: "Total number of clients handled by credit re-check runs, by outcome",
		}, []string{"outcome"}),

		CronJobLastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// RecordJobRun increments the run counter for status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordClientsProcessed adds the outcome counts of one re-check run.
func (m *WorkerMetrics) RecordClientsProcessed(res creditcheck.RecheckResult) {
	m.CronJobClientsProcessedTotal.WithLabelValues("checked").Add(float64(res.Checked))
	m.CronJobClientsProcessedTotal.WithLabelValues("failed").Add(float64(res.Failed))
	m.CronJobClientsProcessedTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
