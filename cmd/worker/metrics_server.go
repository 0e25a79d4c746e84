package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"credit-gateway/pkg/cache"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// BreakerHealthResponse reports the bureau circuit breaker as seen by the worker.
type BreakerHealthResponse struct {
	Healthy bool        `json:"healthy"`
	State   string      `json:"state"`
	Cache   cache.Stats `json:"cache"`
}

// gatewayState is the part of the credit gateway the metrics server reports.
type gatewayState interface {
	BreakerState() string
	CacheStats() cache.Stats
}

// startMetricsServer serves Prometheus metrics and the breaker probe on
// METRICS_PORT (default 9090) until ctx is cancelled.
//
// Endpoints:
//   - GET /metrics - Prometheus metrics
//   - GET /health - liveness, always 200
//   - GET /health/breaker - 503 while the bureau breaker is open
func startMetricsServer(ctx context.Context, logger *slog.Logger, gw gatewayState) *http.Server {
	port := getMetricsPort()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      metricsMux(gw),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

func metricsMux(gw gatewayState) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /health/breaker", breakerHealthHandler(gw))
	return mux
}

// getMetricsPort retrieves the metrics server port from environment variable.
// Defaults to 9090 if not set or invalid.
func getMetricsPort() int {
	portStr := os.Getenv("METRICS_PORT")
	if portStr == "" {
		return 9090
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}
	return port
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func breakerHealthHandler(gw gatewayState) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		state := gw.BreakerState()
		resp := BreakerHealthResponse{
			Healthy: state != "open",
			State:   state,
			Cache:   gw.CacheStats(),
		}
		status := http.StatusOK
		if !resp.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
