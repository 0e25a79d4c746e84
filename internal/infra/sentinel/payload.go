package sentinel

import (
	"encoding/json"
	"strings"
	"time"

	"credit-gateway/internal/domain/entity"
)

// Wire formats of the bureau responses.

type personPayload struct {
	DNI                 string `json:"dni"`
	Nombres             string `json:"nombres"`
	Apellidos           string `json:"apellidos"`
	ScoreCredito        int    `json:"scoreCredito"`
	ClasificacionRiesgo string `json:"clasificacionRiesgo"`
}

type debtsPayload struct {
	DNI    string        `json:"dni"`
	Deudas []entity.Debt `json:"deudas"`
}

type historyPayload struct {
	DNI       string           `json:"dni"`
	Historial []map[string]any `json:"historial"`
}

type reportPayload struct {
	personPayload
	Resumen   map[string]any   `json:"resumen"`
	Historial []map[string]any `json:"historial"`
	Alertas   []map[string]any `json:"alertas"`
}

type alertsPayload struct {
	DNI     string           `json:"dni"`
	Alertas []map[string]any `json:"alertas"`
}

func invalidPayload(err error) *entity.CreditError {
	return entity.NewCreditError(entity.KindUnknownUpstream,
		"Respuesta inválida del servicio crediticio", err)
}

// subjectOr prefers the id echoed by the bureau and falls back to the one requested.
func subjectOr(echoed string, requested entity.SubjectID) entity.SubjectID {
	if s := strings.TrimSpace(echoed); s != "" {
		return entity.SubjectID(s)
	}
	return requested
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func decodePerson(raw []byte, id entity.SubjectID, fetchedAt time.Time) (entity.PersonCreditProfile, error) {
	var p personPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.PersonCreditProfile{}, invalidPayload(err)
	}
	return entity.PersonCreditProfile{
		SubjectID:  subjectOr(p.DNI, id),
		FirstNames: p.Nombres,
		LastNames:  p.Apellidos,
		FullName:   fullName(p.Nombres, p.Apellidos),
		Score:      p.ScoreCredito,
		RiskClass:  entity.RiskClass(p.ClasificacionRiesgo),
		QueriedAt:  fetchedAt,
	}, nil
}

func decodeDebts(raw []byte, id entity.SubjectID, fetchedAt time.Time) (entity.DebtSummary, error) {
	var p debtsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.DebtSummary{}, invalidPayload(err)
	}
	return entity.NewDebtSummary(subjectOr(p.DNI, id), p.Deudas, fetchedAt), nil
}

func decodeHistory(raw []byte, id entity.SubjectID, fetchedAt time.Time) (entity.CreditHistory, error) {
	var p historyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.CreditHistory{}, invalidPayload(err)
	}
	return entity.CreditHistory{
		SubjectID:    subjectOr(p.DNI, id),
		Records:      nonNil(p.Historial),
		TotalRecords: len(p.Historial),
		QueriedAt:    fetchedAt,
	}, nil
}

func decodeReport(raw []byte, id entity.SubjectID, fetchedAt time.Time) (entity.CreditReport, error) {
	var p reportPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.CreditReport{}, invalidPayload(err)
	}
	return entity.CreditReport{
		SubjectID: subjectOr(p.DNI, id),
		FullName:  fullName(p.Nombres, p.Apellidos),
		Score:     p.ScoreCredito,
		RiskClass: entity.RiskClass(p.ClasificacionRiesgo),
		Summary:   p.Resumen,
		History:   nonNil(p.Historial),
		Alerts:    nonNil(p.Alertas),
		QueriedAt: fetchedAt,
	}, nil
}

func decodeAlerts(raw []byte, id entity.SubjectID, fetchedAt time.Time) (entity.AlertList, error) {
	var p alertsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.AlertList{}, invalidPayload(err)
	}
	return entity.AlertList{
		SubjectID:  subjectOr(p.DNI, id),
		Alerts:     nonNil(p.Alertas),
		AlertCount: len(p.Alertas),
		QueriedAt:  fetchedAt,
	}, nil
}

func decodeInfo(raw []byte) (entity.APIInfo, error) {
	var info entity.APIInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, invalidPayload(err)
	}
	if info == nil {
		info = entity.APIInfo{}
	}
	return info, nil
}

func nonNil(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	return records
}
