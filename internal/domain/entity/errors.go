package entity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested entity was not found.
var ErrNotFound = errors.New("entity not found")

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ErrorKind is the closed set of failure categories a credit lookup can end in.
type ErrorKind int

const (
	// KindUnknownUpstream is an upstream failure that fits no other kind.
	KindUnknownUpstream ErrorKind = iota
	KindValidation
	KindNotFound
	// KindRateLimit is the local per-subject rate limiter rejecting a request.
	KindRateLimit
	// KindUpstreamRateLimit is the bureau answering 429.
	KindUpstreamRateLimit
	KindTimeout
	KindServiceUnavailable
	KindUpstreamInternal
)

var kindNames = map[ErrorKind]string{
	KindUnknownUpstream:    "unknown_upstream",
	KindValidation:         "validation",
	KindNotFound:           "not_found",
	KindRateLimit:          "rate_limit",
	KindUpstreamRateLimit:  "upstream_rate_limit",
	KindTimeout:            "timeout",
	KindServiceUnavailable: "service_unavailable",
	KindUpstreamInternal:   "upstream_internal",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus returns the status code the request boundary answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit, KindUpstreamRateLimit:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CreditError is the typed failure produced wherever a credit lookup fails.
// Status holds the upstream HTTP status, or 0 when no response was received.
type CreditError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *CreditError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CreditError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient: a retryable upstream
// status, or a timeout/connection failure that produced no response.
func (e *CreditError) Retryable() bool {
	switch e.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	case 0:
		return e.Kind == KindTimeout || e.Kind == KindServiceUnavailable
	default:
		return false
	}
}

// UpstreamFault reports whether the failure should count against the
// circuit breaker (5xx or transport error). Client-side outcomes such as an
// unknown subject, a malformed id or a caller that cancelled do not.
func (e *CreditError) UpstreamFault() bool {
	if e.Status == 0 && errors.Is(e.Err, context.Canceled) {
		return false
	}
	if e.Status >= http.StatusInternalServerError {
		return true
	}
	if e.Status != 0 {
		return false
	}
	switch e.Kind {
	case KindTimeout, KindServiceUnavailable, KindUnknownUpstream:
		return true
	default:
		return false
	}
}

// NewCreditError builds a CreditError without an upstream status.
func NewCreditError(kind ErrorKind, message string, err error) *CreditError {
	return &CreditError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to KindUnknownUpstream for
// errors that are not CreditErrors.
func KindOf(err error) ErrorKind {
	var ce *CreditError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknownUpstream
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CreditError
	return errors.As(err, &ce) && ce.Kind == kind
}

// IsUpstreamFault reports whether err should be recorded as a breaker failure.
// Errors that are not CreditErrors count as faults, except cancellation.
func IsUpstreamFault(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ce *CreditError
	if errors.As(err, &ce) {
		return ce.UpstreamFault()
	}
	return true
}

// MessageOf returns the user-facing message of a CreditError, or the plain
// error text for any other error.
func MessageOf(err error) string {
	var ce *CreditError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
