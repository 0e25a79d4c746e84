// Package client serves the credit checks of back-office client records
// under /api/clients/.
package client

import (
	"encoding/json"
	"time"

	"credit-gateway/internal/domain/entity"
)

// CreditInfoDTO is the JSON shape of the assessment stored on a client.
type CreditInfoDTO struct {
	ClientID       int64           `json:"clientId" example:"42"`
	Score          int             `json:"scoreCredito" example:"720"`
	ScoreLabel     string          `json:"scoreEtiqueta" example:"Bueno"`
	RiskClass      string          `json:"clasificacionRiesgo" example:"BAJO"`
	TotalDebts     float64         `json:"totalDeudas" example:"3500.5"`
	ActiveCredits  int             `json:"creditosActivos" example:"2"`
	OverdueCredits int             `json:"creditosVencidos" example:"0"`
	Evaluation     string          `json:"evaluacion" example:"APROBAR"`
	Justification  string          `json:"justificacion"`
	SuggestedLimit float64         `json:"limiteCredito" example:"15000"`
	CheckedAt      time.Time       `json:"fechaEvaluacion" example:"2026-03-01T12:00:00Z"`
	RawData        json.RawMessage `json:"datosCompletos,omitempty" swaggertype:"object"`
}

func toDTO(clientID int64, info entity.CreditInfo, withRaw bool) CreditInfoDTO {
	out := CreditInfoDTO{
		ClientID:       clientID,
		Score:          info.Score,
		ScoreLabel:     entity.ScoreLabel(info.Score),
		RiskClass:      string(info.RiskClass),
		TotalDebts:     info.TotalDebts,
		ActiveCredits:  info.ActiveCredits,
		OverdueCredits: info.OverdueCredits,
		Evaluation:     string(info.Evaluation),
		Justification:  info.Justification,
		SuggestedLimit: info.SuggestedLimit,
		CheckedAt:      info.CheckedAt,
	}
	if withRaw {
		out.RawData = info.RawData
	}
	return out
}
