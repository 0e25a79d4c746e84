// Package sentinel serves the credit bureau lookups of the gateway under
// /api/sentinel/. It validates the DNI path parameter, writes one audit line
// per request and translates gateway errors into HTTP statuses.
package sentinel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/handler/http/auth"
	"credit-gateway/internal/handler/http/middleware"
	"credit-gateway/internal/handler/http/respond"
	"credit-gateway/internal/observability/logging"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/internal/usecase/credit"
	"credit-gateway/pkg/cache"
)

// User-facing messages per error kind.
const (
	MsgNotFound           = "Persona no encontrada en el sistema crediticio"
	MsgUpstreamRateLimit  = "Límite de consultas excedido. Intente más tarde"
	MsgTimeout            = "Tiempo de espera agotado en consulta crediticia"
	MsgServiceUnavailable = "Servicio de consulta crediticia no disponible temporalmente"
	MsgInternal           = "Error interno en consulta crediticia"
)

// Service is the credit gateway as seen by the handlers.
type Service interface {
	GetPerson(ctx context.Context, dni string) (entity.PersonCreditProfile, error)
	GetDebts(ctx context.Context, dni string) (entity.DebtSummary, error)
	GetHistory(ctx context.Context, dni string) (entity.CreditHistory, error)
	GetReport(ctx context.Context, dni string) (entity.CreditReport, error)
	GetAlerts(ctx context.Context, dni string) (entity.AlertList, error)
	GetQuickCreditAssessment(ctx context.Context, dni string) (*entity.CreditAssessment, error)
	GetAPIInfo(ctx context.Context) (entity.APIInfo, error)
	ClearCache(dni string) error
	CacheStats() cache.Stats
	BreakerState() string
	HealthCheck(ctx context.Context) credit.HealthReport
}

// Response is the success envelope of every /api/sentinel endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(w http.ResponseWriter, status int, message string, data any) {
	respond.JSON(w, status, Response{Success: true, Message: message, Data: data})
}

// WriteError answers with the status of the error's kind. Validation, local
// rate limit and breaker messages are already user-facing; every other kind
// gets a fixed message so upstream details never leak. A local rate limit
// also sets Retry-After and the X-RateLimit-* headers.
func WriteError(w http.ResponseWriter, r *http.Request, op string, err error, logger *slog.Logger) {
	kind := entity.KindOf(err)
	status := kind.HTTPStatus()
	metrics.RecordCreditError(op, kind.String())
	logger = logging.WithRequestID(r.Context(), logger)

	attrs := []any{
		slog.String("operation", op),
		slog.String("kind", kind.String()),
		slog.Int("status", status),
		slog.String("path", r.URL.Path),
		slog.String("error", respond.SanitizeError(err)),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("credit lookup failed", attrs...)
	} else {
		logger.Warn("credit lookup rejected", attrs...)
	}

	var limited *credit.RateLimited
	if errors.As(err, &limited) {
		middleware.WriteRateLimited(w, limited.Decision, entity.MessageOf(err), kind.String())
		return
	}
	respond.Message(w, status, userMessage(kind, err), kind.String())
}

func userMessage(kind entity.ErrorKind, err error) string {
	switch kind {
	case entity.KindValidation, entity.KindRateLimit:
		return entity.MessageOf(err)
	case entity.KindNotFound:
		return MsgNotFound
	case entity.KindUpstreamRateLimit:
		return MsgUpstreamRateLimit
	case entity.KindTimeout:
		return MsgTimeout
	case entity.KindServiceUnavailable:
		if msg := entity.MessageOf(err); msg == credit.MsgBreakerOpen {
			return msg
		}
		return MsgServiceUnavailable
	default:
		return MsgInternal
	}
}

// auditor writes the access log for credit data and guards the DNI
// parameter of subject routes.
type auditor struct {
	logger    *slog.Logger
	extractor middleware.IPExtractor
	now       func() time.Time
}

// audit logs who asked for which subject. It runs before validation so
// rejected attempts are recorded too.
func (a auditor) audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attrs := []any{
			slog.String("timestamp", a.now().UTC().Format(time.RFC3339)),
			slog.String("method", r.Method),
			slog.String("url", r.URL.RequestURI()),
			slog.String("dni", r.PathValue("dni")),
			slog.String("ip", middleware.ClientIP(r, a.extractor)),
			slog.String("user_agent", r.UserAgent()),
		}
		if u, ok := auth.UserFromContext(r.Context()); ok {
			attrs = append(attrs, slog.String("user_id", u.ID), slog.String("user_email", u.Email))
		}
		logging.WithRequestID(r.Context(), a.logger).Info("sentinel audit", attrs...)
		next.ServeHTTP(w, r)
	})
}

// pathDNI validates the {dni} path value and answers 400 when it is
// malformed, before the gateway is touched.
func pathDNI(w http.ResponseWriter, r *http.Request, op string, logger *slog.Logger) (entity.SubjectID, bool) {
	dni, err := entity.ParseSubjectID(r.PathValue("dni"))
	if err != nil {
		WriteError(w, r, op, err, loggerOr(logger))
		return "", false
	}
	return dni, true
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
