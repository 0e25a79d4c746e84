package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authDecisions counts every checked request. code is empty on success
	// and holds the 401/403 response code otherwise.
	authDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_decisions_total",
		Help: "Bearer token checks by role and rejection code",
	}, []string{"role", "code"})

	authCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auth_check_duration_seconds",
		Help:    "Time spent verifying a bearer token",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
)

func recordDecision(role, code string, started time.Time) {
	if role == "" {
		role = "unknown"
	}
	authCheckDuration.Observe(time.Since(started).Seconds())
	authDecisions.WithLabelValues(role, code).Inc()
}
