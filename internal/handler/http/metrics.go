package http

import (
	"net/http"
	"strconv"
	"time"

	"credit-gateway/internal/handler/http/pathutil"
	"credit-gateway/internal/handler/http/responsewriter"
	"credit-gateway/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records HTTP request metrics including duration, size,
// and status codes. Paths are normalized so that neither client IDs nor
// DNIs become label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		route := pathutil.NormalizePath(r.URL.Path)
		rw := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(
			r.Method,
			route,
			strconv.Itoa(rw.StatusCode()),
			time.Since(start),
			int(r.ContentLength),
			rw.BytesWritten(),
		)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// SLOObserver receives the outcome of every answered request.
type SLOObserver interface {
	Observe(status int, d time.Duration)
}

// SLOMiddleware feeds request outcomes to obs.
func SLOMiddleware(obs SLOObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := responsewriter.Wrap(w)
			start := time.Now()
			next.ServeHTTP(rw, r)
			obs.Observe(rw.StatusCode(), time.Since(start))
		})
	}
}
