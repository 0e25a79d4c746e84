package credit

import "credit-gateway/internal/domain/entity"

// Justifications attached to each decision.
const (
	JustificationExcellent    = "Excelente score crediticio"
	JustificationGood         = "Buen score crediticio"
	JustificationFair         = "Score crediticio regular, requiere revisión"
	JustificationLow          = "Score crediticio bajo, requiere análisis detallado"
	JustificationVeryLow      = "Score crediticio muy bajo"
	JustificationElevatedRisk = "Clasificación de riesgo elevada"
)

// Evaluation is the outcome of the decision table.
type Evaluation struct {
	Recommendation entity.Recommendation
	SuggestedLimit float64
	Justification  string
}

// band is one row of the score table. Rows are checked top-down and the
// first row whose minScore is met wins.
type band struct {
	minScore       int
	recommendation entity.Recommendation
	debtCeiling    float64 // total debt above this lowers the limit
	limit          float64
	reducedLimit   float64
	justification  string
}

var bands = []band{
	{750, entity.RecommendApprove, 50000, 50000, 30000, JustificationExcellent},
	{650, entity.RecommendApprove, 30000, 30000, 15000, JustificationGood},
	{550, entity.RecommendReview, 20000, 20000, 10000, JustificationFair},
	{450, entity.RecommendReview, 10000, 10000, 5000, JustificationLow},
}

// Evaluate derives the recommendation and suggested limit from a score,
// risk classification and total outstanding debt. An elevated risk class
// (ALTO, MUY_ALTO) rejects regardless of score.
func Evaluate(score int, risk entity.RiskClass, totalDebt float64) Evaluation {
	ev := Evaluation{
		Recommendation: entity.RecommendReject,
		SuggestedLimit: 0,
		Justification:  JustificationVeryLow,
	}
	for _, b := range bands {
		if score < b.minScore {
			continue
		}
		ev.Recommendation = b.recommendation
		ev.Justification = b.justification
		ev.SuggestedLimit = b.limit
		if totalDebt > b.debtCeiling {
			ev.SuggestedLimit = b.reducedLimit
		}
		break
	}

	if risk.Elevated() {
		ev = Evaluation{
			Recommendation: entity.RecommendReject,
			SuggestedLimit: 0,
			Justification:  JustificationElevatedRisk,
		}
	}
	return ev
}

// Assess composes a CreditAssessment from the fetched profile and debts.
func Assess(profile entity.PersonCreditProfile, debts entity.DebtSummary) entity.CreditAssessment {
	ev := Evaluate(profile.Score, profile.RiskClass, debts.TotalDebt)
	return entity.CreditAssessment{
		SubjectID:      profile.SubjectID,
		Profile:        profile,
		Debts:          debts,
		Recommendation: ev.Recommendation,
		SuggestedLimit: ev.SuggestedLimit,
		Justification:  ev.Justification,
		Factors: entity.AssessmentFactors{
			Score:     profile.Score,
			RiskClass: profile.RiskClass,
			TotalDebt: debts.TotalDebt,
			DebtCount: debts.DebtCount,
		},
	}
}
