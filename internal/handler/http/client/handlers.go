package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/handler/http/pathutil"
	"credit-gateway/internal/handler/http/respond"
	"credit-gateway/internal/handler/http/sentinel"
	"credit-gateway/internal/usecase/creditcheck"
)

// DefaultMaxAge is how long a stored assessment is served before the
// bureau is queried again.
const DefaultMaxAge = 30 * 24 * time.Hour

// Service is the client credit check as seen by the handlers.
type Service interface {
	PerformCreditCheck(ctx context.Context, clientID int64) (entity.CreditInfo, error)
	EnsureFresh(ctx context.Context, clientID int64, maxAge time.Duration) (entity.CreditInfo, error)
}

var _ Service = (*creditcheck.Service)(nil)

// CreditCheckHandler queries the bureau for a client and stores the result.
type CreditCheckHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Evaluar cliente
// @Description  Consulta Sentinel con el DNI del cliente y guarda la evaluación en su ficha
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID del cliente"
// @Success      200  {object}  sentinel.Response{data=client.CreditInfoDTO}
// @Failure      400  {object}  respond.ErrorBody "ID inválido"
// @Failure      404  {object}  respond.ErrorBody "Cliente no encontrado"
// @Failure      422  {object}  respond.ErrorBody "El cliente no admite evaluación"
// @Failure      429  {object}  respond.ErrorBody
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/clients/{id}/credit-check [post]
func (h CreditCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := h.Svc.PerformCreditCheck(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, sentinel.Response{
		Success: true,
		Message: "Evaluación crediticia completada",
		Data:    toDTO(id, info, true),
	})
}

func (h CreditCheckHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, "client_credit_check", err, h.Logger)
}

// AssessmentHandler returns the stored assessment of a client, running a new
// credit check when it is missing or older than MaxAge.
type AssessmentHandler struct {
	Svc    Service
	Logger *slog.Logger
	// MaxAge defaults to DefaultMaxAge. The max_age_hours query parameter
	// overrides it per request.
	MaxAge time.Duration
}

// ServeHTTP godoc
// @Summary      Evaluación vigente del cliente
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id             path   int  true   "ID del cliente"
// @Param        max_age_hours  query  int  false  "Antigüedad máxima aceptada en horas"
// @Success      200  {object}  sentinel.Response{data=client.CreditInfoDTO}
// @Failure      400  {object}  respond.ErrorBody
// @Failure      404  {object}  respond.ErrorBody
// @Failure      422  {object}  respond.ErrorBody
// @Router       /api/clients/{id}/credit-check [get]
func (h AssessmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	maxAge := h.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if raw := r.URL.Query().Get("max_age_hours"); raw != "" {
		hours, convErr := strconv.Atoi(raw)
		if convErr != nil || hours <= 0 {
			respond.Message(w, http.StatusBadRequest, "max_age_hours must be a positive integer", "validation")
			return
		}
		maxAge = time.Duration(hours) * time.Hour
	}

	info, err := h.Svc.EnsureFresh(r.Context(), id, maxAge)
	if err != nil {
		writeError(w, r, "client_credit_assessment", err, h.Logger)
		return
	}
	respond.JSON(w, http.StatusOK, sentinel.Response{Success: true, Data: toDTO(id, info, false)})
}

// writeError maps the use case errors and hands bureau failures to the
// sentinel translation so both route families answer alike.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case errors.Is(err, creditcheck.ErrClientNotFound):
		respond.Message(w, http.StatusNotFound, "Cliente no encontrado", "client_not_found")
	case errors.Is(err, creditcheck.ErrCreditCheckNotAllowed):
		respond.Message(w, http.StatusUnprocessableEntity,
			"El cliente debe estar activo y tener DNI para la evaluación crediticia", "credit_check_not_allowed")
	default:
		var ce *entity.CreditError
		if errors.As(err, &ce) {
			sentinel.WriteError(w, r, op, err, logger)
			return
		}
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Error al procesar la evaluación del cliente", err))
	}
}

// Register mounts the client credit check routes on mux.
func Register(mux *http.ServeMux, svc Service, logger *slog.Logger) {
	mux.Handle("POST /api/clients/{id}/credit-check", CreditCheckHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /api/clients/{id}/credit-check", AssessmentHandler{Svc: svc, Logger: logger})
}
