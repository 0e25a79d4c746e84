package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestRecordBreakerTransition(t *testing.T) {
	const circuit = "test-transition"

	RecordBreakerTransition(circuit, gobreaker.StateClosed, gobreaker.StateOpen)
	assert.Equal(t, 2.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues(circuit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerTransitionsTotal.WithLabelValues(circuit, "closed", "open")))

	RecordBreakerTransition(circuit, gobreaker.StateOpen, gobreaker.StateHalfOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues(circuit)))

	RecordBreakerTransition(circuit, gobreaker.StateHalfOpen, gobreaker.StateClosed)
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues(circuit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerTransitionsTotal.WithLabelValues(circuit, "half-open", "closed")))
}

func TestSetBreakerState(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		want  float64
	}{
		{gobreaker.StateClosed, 0},
		{gobreaker.StateHalfOpen, 1},
		{gobreaker.StateOpen, 2},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			SetBreakerState("test-set", tt.state)
			assert.Equal(t, tt.want, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-set")))
		})
	}
}

func TestRecordAssessment(t *testing.T) {
	before := testutil.ToFloat64(CreditAssessmentsTotal.WithLabelValues("review"))
	RecordAssessment("review")
	RecordAssessment("review")
	assert.Equal(t, before+2, testutil.ToFloat64(CreditAssessmentsTotal.WithLabelValues("review")))
}

func TestRecordCreditError(t *testing.T) {
	before := testutil.ToFloat64(CreditErrorsTotal.WithLabelValues("assessment", "timeout"))
	RecordCreditError("assessment", "timeout")
	assert.Equal(t, before+1, testutil.ToFloat64(CreditErrorsTotal.WithLabelValues("assessment", "timeout")))
}

func TestRecordClientCreditCheck(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		label   string
	}{
		{"success", true, "success"},
		{"failure", false, "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ClientCreditChecksTotal.WithLabelValues(tt.label))
			RecordClientCreditCheck(tt.success)
			assert.Equal(t, before+1, testutil.ToFloat64(ClientCreditChecksTotal.WithLabelValues(tt.label)))
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		duration  time.Duration
	}{
		{"fast query", "get_client", 2 * time.Millisecond},
		{"slow query", "list_stale_clients", 1500 * time.Millisecond},
		{"zero duration", "update_credit_info", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDBQuery(tt.operation, tt.duration)
			})
		})
	}
}

func TestUpdateDBConnectionStats(t *testing.T) {
	UpdateDBConnectionStats(7, 3)
	assert.Equal(t, 7.0, testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, 3.0, testutil.ToFloat64(DBConnectionsIdle))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/sentinel/assessment/{dni}", "200"))
	RecordHTTPRequest("GET", "/api/sentinel/assessment/{dni}", "200", 30*time.Millisecond, 0, 512)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/sentinel/assessment/{dni}", "200")))
}
