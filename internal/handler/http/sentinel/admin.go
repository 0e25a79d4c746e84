package sentinel

import (
	"log/slog"
	"net/http"

	"credit-gateway/internal/handler/http/respond"
	"credit-gateway/internal/usecase/credit"
	"credit-gateway/pkg/cache"
)

// InfoHandler serves the bureau metadata.
type InfoHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Información de la API Sentinel
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  sentinel.Response
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/sentinel/info [get]
func (h InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info, err := h.Svc.GetAPIInfo(r.Context())
	if err != nil {
		WriteError(w, r, opInfo, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "", info)
}

// ClearCacheHandler drops cached bureau responses: all of them, or those of
// the subject in the path.
type ClearCacheHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Limpiar caché
// @Description  Sin DNI limpia toda la caché; con DNI solo las entradas de ese sujeto
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  false  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response
// @Failure      400  {object}  respond.ErrorBody
// @Router       /api/sentinel/cache [delete]
// @Router       /api/sentinel/cache/{dni} [delete]
func (h ClearCacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := loggerOr(h.Logger)

	if r.PathValue("dni") == "" {
		if err := h.Svc.ClearCache(""); err != nil {
			WriteError(w, r, opCache, err, logger)
			return
		}
		logger.Info("credit cache cleared")
		ok(w, http.StatusOK, "Caché limpiada completamente", nil)
		return
	}

	dni, valid := pathDNI(w, r, opCache, h.Logger)
	if !valid {
		return
	}
	if err := h.Svc.ClearCache(dni.String()); err != nil {
		WriteError(w, r, opCache, err, logger)
		return
	}
	logger.Info("credit cache cleared for subject", slog.String("dni", dni.String()))
	ok(w, http.StatusOK, "Caché limpiada para DNI "+dni.String(), nil)
}

// CacheStatsData is the payload of the cache statistics endpoint.
type CacheStatsData struct {
	Cache          cache.Stats `json:"cache"`
	CircuitBreaker string      `json:"circuitBreaker"`
}

// CacheStatsHandler serves cache usage and the breaker state.
type CacheStatsHandler struct {
	Svc Service
}

// ServeHTTP godoc
// @Summary      Estadísticas de caché
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  sentinel.Response{data=sentinel.CacheStatsData}
// @Router       /api/sentinel/cache/stats [get]
func (h CacheStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", CacheStatsData{
		Cache:          h.Svc.CacheStats(),
		CircuitBreaker: h.Svc.BreakerState(),
	})
}

// HealthHandler reports the health of the bureau integration. It answers
// 503 when the bureau or the cache fails its probe.
type HealthHandler struct {
	Svc Service
}

// ServeHTTP godoc
// @Summary      Estado de la integración Sentinel
// @Tags         sentinel
// @Produce      json
// @Success      200  {object}  sentinel.Response{data=credit.HealthReport}
// @Failure      503  {object}  sentinel.Response{data=credit.HealthReport}
// @Router       /api/sentinel/health [get]
func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := h.Svc.HealthCheck(r.Context())
	if !report.Healthy {
		respond.JSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "Sentinel API integration unhealthy",
			Data:    report,
		})
		return
	}
	ok(w, http.StatusOK, "Sentinel API integration healthy", report)
}

var _ Service = (*credit.Service)(nil)
