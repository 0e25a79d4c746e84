package sentinel

import (
	"log/slog"
	"net/http"
	"time"

	"credit-gateway/internal/handler/http/middleware"
)

// Register mounts the /api/sentinel routes on mux. Every route is audited;
// extractor resolves the client IP for the audit line.
func Register(mux *http.ServeMux, svc Service, extractor middleware.IPExtractor, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	a := auditor{logger: logger, extractor: extractor, now: time.Now}

	mux.Handle("GET /api/sentinel/person/{dni}", a.audit(PersonHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/sentinel/debts/{dni}", a.audit(DebtsHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/sentinel/history/{dni}", a.audit(HistoryHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/sentinel/report/{dni}", a.audit(ReportHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/sentinel/alerts/{dni}", a.audit(AlertsHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/sentinel/assessment/{dni}", a.audit(AssessmentHandler{Svc: svc, Logger: logger}))

	mux.Handle("GET /api/sentinel/info", a.audit(InfoHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/sentinel/health", HealthHandler{Svc: svc})
	mux.Handle("GET /api/sentinel/cache/stats", a.audit(CacheStatsHandler{Svc: svc}))
	mux.Handle("DELETE /api/sentinel/cache", a.audit(ClearCacheHandler{Svc: svc, Logger: logger}))
	mux.Handle("DELETE /api/sentinel/cache/{dni}", a.audit(ClearCacheHandler{Svc: svc, Logger: logger}))
}
