package sentinel

import (
	"log/slog"
	"net/http"
)

// Operation names used in logs and the credit_errors_total metric.
const (
	opPerson     = "person"
	opDebts      = "debts"
	opHistory    = "history"
	opReport     = "report"
	opAlerts     = "alerts"
	opAssessment = "assessment"
	opInfo       = "info"
	opCache      = "cache"
)

// PersonHandler serves the credit profile of a subject.
type PersonHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Perfil crediticio
// @Description  Datos personales, score y clasificación de riesgo del DNI
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  true  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response{data=entity.PersonCreditProfile}
// @Failure      400  {object}  respond.ErrorBody "DNI inválido"
// @Failure      404  {object}  respond.ErrorBody "Persona no encontrada"
// @Failure      429  {object}  respond.ErrorBody "Límite de consultas excedido"
// @Failure      503  {object}  respond.ErrorBody "Servicio no disponible"
// @Router       /api/sentinel/person/{dni} [get]
func (h PersonHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dni, valid := pathDNI(w, r, opPerson, h.Logger)
	if !valid {
		return
	}
	profile, err := h.Svc.GetPerson(r.Context(), dni.String())
	if err != nil {
		WriteError(w, r, opPerson, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "", profile)
}

// DebtsHandler serves the current debts of a subject.
type DebtsHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Deudas vigentes
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  true  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response{data=entity.DebtSummary}
// @Failure      400  {object}  respond.ErrorBody
// @Failure      404  {object}  respond.ErrorBody
// @Failure      429  {object}  respond.ErrorBody
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/sentinel/debts/{dni} [get]
func (h DebtsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dni, valid := pathDNI(w, r, opDebts, h.Logger)
	if !valid {
		return
	}
	debts, err := h.Svc.GetDebts(r.Context(), dni.String())
	if err != nil {
		WriteError(w, r, opDebts, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "", debts)
}

// HistoryHandler serves the credit history of a subject.
type HistoryHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Historial crediticio
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  true  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response{data=entity.CreditHistory}
// @Failure      400  {object}  respond.ErrorBody
// @Failure      404  {object}  respond.ErrorBody
// @Failure      429  {object}  respond.ErrorBody
// @Router       /api/sentinel/history/{dni} [get]
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dni, valid := pathDNI(w, r, opHistory, h.Logger)
	if !valid {
		return
	}
	history, err := h.Svc.GetHistory(r.Context(), dni.String())
	if err != nil {
		WriteError(w, r, opHistory, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "", history)
}

// ReportHandler serves the full bureau report of a subject.
type ReportHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Reporte crediticio completo
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  true  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response{data=entity.CreditReport}
// @Failure      400  {object}  respond.ErrorBody
// @Failure      404  {object}  respond.ErrorBody
// @Failure      429  {object}  respond.ErrorBody
// @Router       /api/sentinel/report/{dni} [get]
func (h ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dni, valid := pathDNI(w, r, opReport, h.Logger)
	if !valid {
		return
	}
	report, err := h.Svc.GetReport(r.Context(), dni.String())
	if err != nil {
		WriteError(w, r, opReport, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "", report)
}

// AlertsHandler serves the bureau alerts of a subject.
type AlertsHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Alertas crediticias
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  true  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response{data=entity.AlertList}
// @Failure      400  {object}  respond.ErrorBody
// @Failure      404  {object}  respond.ErrorBody
// @Failure      429  {object}  respond.ErrorBody
// @Router       /api/sentinel/alerts/{dni} [get]
func (h AlertsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dni, valid := pathDNI(w, r, opAlerts, h.Logger)
	if !valid {
		return
	}
	alerts, err := h.Svc.GetAlerts(r.Context(), dni.String())
	if err != nil {
		WriteError(w, r, opAlerts, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "", alerts)
}

// AssessmentHandler runs the quick credit assessment of a subject.
type AssessmentHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Evaluación crediticia rápida
// @Description  Combina perfil y deudas y devuelve recomendación (APROBAR, REVISAR, RECHAZAR) y límite sugerido
// @Tags         sentinel
// @Security     BearerAuth
// @Produce      json
// @Param        dni  path      string  true  "DNI (8 dígitos)"
// @Success      200  {object}  sentinel.Response{data=entity.CreditAssessment}
// @Failure      400  {object}  respond.ErrorBody
// @Failure      404  {object}  respond.ErrorBody
// @Failure      408  {object}  respond.ErrorBody
// @Failure      429  {object}  respond.ErrorBody
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/sentinel/assessment/{dni} [get]
func (h AssessmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dni, valid := pathDNI(w, r, opAssessment, h.Logger)
	if !valid {
		return
	}
	assessment, err := h.Svc.GetQuickCreditAssessment(r.Context(), dni.String())
	if err != nil {
		WriteError(w, r, opAssessment, err, loggerOr(h.Logger))
		return
	}
	ok(w, http.StatusOK, "Evaluación crediticia completada", assessment)
}
