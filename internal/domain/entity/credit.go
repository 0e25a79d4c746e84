package entity

import (
	"regexp"
	"strings"
	"time"
)

var subjectIDPattern = regexp.MustCompile(`^\d{8}$`)

// SubjectID is the 8-digit DNI identifying a person at the credit bureau.
type SubjectID string

func (s SubjectID) String() string { return string(s) }

// ParseSubjectID trims raw and checks it is exactly 8 ASCII digits.
func ParseSubjectID(raw string) (SubjectID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", NewCreditError(KindValidation, "DNI es requerido",
			&ValidationError{Field: "dni", Message: "required"})
	}
	if !subjectIDPattern.MatchString(trimmed) {
		return "", NewCreditError(KindValidation, "DNI debe tener exactamente 8 dígitos numéricos",
			&ValidationError{Field: "dni", Message: "must be exactly 8 digits"})
	}
	return SubjectID(trimmed), nil
}

// RiskClass is the bureau's risk classification.
type RiskClass string

const (
	RiskLow      RiskClass = "BAJO"
	RiskMedium   RiskClass = "MEDIO"
	RiskHigh     RiskClass = "ALTO"
	RiskVeryHigh RiskClass = "MUY_ALTO"
)

// Valid reports whether r is one of the known classifications.
func (r RiskClass) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskVeryHigh:
		return true
	}
	return false
}

// Elevated is true for ALTO and MUY_ALTO.
func (r RiskClass) Elevated() bool {
	return r == RiskHigh || r == RiskVeryHigh
}

// Recommendation is the automatic credit decision.
type Recommendation string

const (
	RecommendApprove Recommendation = "APROBAR"
	RecommendReview  Recommendation = "REVISAR"
	RecommendReject  Recommendation = "RECHAZAR"
)

// PersonCreditProfile is a point-in-time snapshot of a person at the bureau.
type PersonCreditProfile struct {
	SubjectID  SubjectID `json:"dni"`
	FirstNames string    `json:"nombres"`
	LastNames  string    `json:"apellidos"`
	FullName   string    `json:"nombreCompleto"`
	Score      int       `json:"scoreCredito"`
	RiskClass  RiskClass `json:"clasificacionRiesgo"`
	QueriedAt  time.Time `json:"fechaConsulta"`
}

// Debt is a single reported obligation.
type Debt struct {
	Entity         string  `json:"entidad,omitempty"`
	Type           string  `json:"tipoDeuda,omitempty"`
	CurrentBalance float64 `json:"saldoActual"`
	Status         string  `json:"estado,omitempty"`
	DaysOverdue    int     `json:"diasVencidos,omitempty"`
}

// DebtSummary aggregates the debts currently reported for a subject.
type DebtSummary struct {
	SubjectID SubjectID `json:"dni"`
	Debts     []Debt    `json:"deudas"`
	TotalDebt float64   `json:"totalDeudas"`
	DebtCount int       `json:"cantidadDeudas"`
	QueriedAt time.Time `json:"fechaConsulta"`
}

// NewDebtSummary sums the current balances of debts.
func NewDebtSummary(id SubjectID, debts []Debt, queriedAt time.Time) DebtSummary {
	if debts == nil {
		debts = []Debt{}
	}
	var total float64
	for _, d := range debts {
		total += d.CurrentBalance
	}
	return DebtSummary{
		SubjectID: id,
		Debts:     debts,
		TotalDebt: total,
		DebtCount: len(debts),
		QueriedAt: queriedAt,
	}
}

// AssessmentFactors are the inputs the decision was derived from.
type AssessmentFactors struct {
	Score     int       `json:"scoreCredito"`
	RiskClass RiskClass `json:"clasificacionRiesgo"`
	TotalDebt float64   `json:"totalDeudas"`
	DebtCount int       `json:"cantidadDeudas"`
}

// CreditAssessment is the composed result of a quick credit assessment.
// It is computed on demand and never stored by the gateway.
type CreditAssessment struct {
	SubjectID      SubjectID           `json:"dni"`
	Profile        PersonCreditProfile `json:"persona"`
	Debts          DebtSummary         `json:"deudas"`
	Recommendation Recommendation      `json:"recomendacion"`
	SuggestedLimit float64             `json:"limiteCredito"`
	Justification  string              `json:"justificacion"`
	Factors        AssessmentFactors   `json:"factores"`
	EvaluatedAt    time.Time           `json:"fechaEvaluacion"`
}

// CreditHistory lists the historical records the bureau keeps for a subject.
type CreditHistory struct {
	SubjectID    SubjectID        `json:"dni"`
	Records      []map[string]any `json:"historial"`
	TotalRecords int              `json:"totalRegistros"`
	QueriedAt    time.Time        `json:"fechaConsulta"`
}

// CreditReport is the bureau's consolidated report.
type CreditReport struct {
	SubjectID SubjectID        `json:"dni"`
	FullName  string           `json:"nombreCompleto"`
	Score     int              `json:"scoreCredito"`
	RiskClass RiskClass        `json:"clasificacionRiesgo"`
	Summary   map[string]any   `json:"resumen,omitempty"`
	History   []map[string]any `json:"historial"`
	Alerts    []map[string]any `json:"alertas"`
	QueriedAt time.Time        `json:"fechaConsulta"`
}

// AlertList holds the active alerts for a subject.
type AlertList struct {
	SubjectID  SubjectID        `json:"dni"`
	Alerts     []map[string]any `json:"alertas"`
	AlertCount int              `json:"cantidadAlertas"`
	QueriedAt  time.Time        `json:"fechaConsulta"`
}

// APIInfo is the bureau's service metadata, passed through as-is.
type APIInfo map[string]any

// ScoreLabel returns the human-readable band of a credit score.
func ScoreLabel(score int) string {
	switch {
	case score <= 0:
		return "No evaluado"
	case score >= 750:
		return "Excelente"
	case score >= 650:
		return "Bueno"
	case score >= 550:
		return "Regular"
	case score >= 450:
		return "Malo"
	default:
		return "Muy malo"
	}
}
