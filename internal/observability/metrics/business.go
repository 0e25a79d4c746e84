package metrics

import (
	"time"

	"github.com/sony/gobreaker"
)

// breakerStateValue maps a breaker state onto the circuit_breaker_state gauge.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// SetBreakerState sets the state gauge for a circuit, e.g. at startup.
func SetBreakerState(circuit string, s gobreaker.State) {
	CircuitBreakerState.WithLabelValues(circuit).Set(breakerStateValue(s))
}

// RecordBreakerTransition updates the state gauge and transition counter.
// Its signature matches circuitbreaker.StateObserverFunc.
func RecordBreakerTransition(circuit string, from, to gobreaker.State) {
	SetBreakerState(circuit, to)
	CircuitBreakerTransitionsTotal.WithLabelValues(circuit, from.String(), to.String()).Inc()
}

// RecordAssessment counts one served assessment by its recommendation
// (approve, review, reject).
func RecordAssessment(recommendation string) {
	CreditAssessmentsTotal.WithLabelValues(recommendation).Inc()
}

// RecordCreditError counts a failed gateway operation by its error kind.
func RecordCreditError(operation, kind string) {
	CreditErrorsTotal.WithLabelValues(operation, kind).Inc()
}

// RecordClientCreditCheck records the result of a persisted client credit check.
func RecordClientCreditCheck(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	ClientCreditChecksTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "get_client", "update_credit_info").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
