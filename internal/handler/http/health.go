// Package http provides the gateway's HTTP plumbing: the middleware chain,
// the process health endpoints and Prometheus metrics. The route handlers
// live in the subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"credit-gateway/internal/handler/http/respond"
	"credit-gateway/pkg/cache"
	"credit-gateway/pkg/ratelimit"
)

// Check statuses.
const (
	StatusHealthy       = "healthy"
	StatusDegraded      = "degraded"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not_configured"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// GatewayStatus exposes the in-process state of the credit gateway.
type GatewayStatus interface {
	CacheStats() cache.Stats
	BreakerState() string
}

// HealthHandler reports process health: database pool, cache usage, breaker
// state and rate limiter sizes. It never calls the bureau; that is what
// /api/sentinel/health is for. An open breaker is reported as degraded
// because the process itself still serves cached and local answers.
type HealthHandler struct {
	// DB is optional; the gateway runs without the client endpoints.
	DB      *sql.DB
	Gateway GatewayStatus
	// RateLimitStores are keyed by limiter type, e.g. "dni" and "client".
	RateLimitStores map[string]ratelimit.Store
	Version         string
}

// ServeHTTP godoc
// @Summary      Estado del proceso
// @Tags         health
// @Produce      json
// @Success      200  {object}  http.HealthResponse
// @Failure      503  {object}  http.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	allHealthy := true

	if h.DB != nil {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status == StatusUnhealthy {
			allHealthy = false
		}
	} else {
		checks["database"] = CheckStatus{Status: StatusNotConfigured}
	}

	if h.Gateway != nil {
		checks["cache"] = h.checkCache()
		checks["circuit_breaker"] = h.checkBreaker()
	}

	if len(h.RateLimitStores) > 0 {
		checks["rate_limiter"] = h.checkRateLimiters(ctx)
	}

	status := StatusHealthy
	statusCode := http.StatusOK
	if !allHealthy {
		status = StatusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase checks database connectivity and returns connection pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{
			Status:  StatusUnhealthy,
			Message: respond.SanitizeError(err),
		}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections 0 means unlimited
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilizationPercent := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilizationPercent
	if utilizationPercent >= 80.0 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}

	return CheckStatus{Status: StatusHealthy, Details: details}
}

func (h *HealthHandler) checkCache() CheckStatus {
	stats := h.Gateway.CacheStats()
	return CheckStatus{
		Status: StatusHealthy,
		Details: map[string]any{
			"keys":     stats.Keys,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate,
		},
	}
}

func (h *HealthHandler) checkBreaker() CheckStatus {
	state := h.Gateway.BreakerState()
	check := CheckStatus{Status: StatusHealthy, Details: map[string]any{"state": state}}
	if state != "closed" {
		check.Status = StatusDegraded
		check.Message = "credit bureau circuit is " + state
	}
	return check
}

// checkRateLimiters reports the number of tracked keys per limiter. Limiter
// state is informational and never makes the process unhealthy.
func (h *HealthHandler) checkRateLimiters(ctx context.Context) CheckStatus {
	details := make(map[string]any, len(h.RateLimitStores))
	for name, store := range h.RateLimitStores {
		keys, err := store.KeyCount(ctx)
		if err != nil {
			details[name] = map[string]any{"error": respond.SanitizeError(err)}
			continue
		}
		details[name] = map[string]any{"active_keys": keys}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

// ReadyHandler handles Kubernetes readiness probe requests. When a database
// is configured it must answer a ping.
type ReadyHandler struct {
	DB *sql.DB
}

// ServeHTTP godoc
// @Summary      Readiness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "database not ready"
// @Router       /ready [get]
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			slog.Default().Warn("readiness check failed", slog.String("error", respond.SanitizeError(err)))
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}

	writePlain(w, "ready")
}

// LiveHandler handles Kubernetes liveness probe requests.
type LiveHandler struct{}

// ServeHTTP godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "alive"
// @Router       /live [get]
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writePlain(w, "alive")
}

func writePlain(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Default().Debug("failed to write probe response", slog.Any("error", err))
	}
}
