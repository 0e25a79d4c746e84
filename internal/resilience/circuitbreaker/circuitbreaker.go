// Package circuitbreaker provides circuit breaker implementations for external service calls.
// It uses the github.com/sony/gobreaker library to prevent cascading failures.
//
// The breaker is a three-state machine:
//   - closed: calls pass; each failure bumps a consecutive-failure counter, a
//     success resets it. Reaching FailureThreshold opens the circuit.
//   - open: calls are rejected without reaching the dependency until
//     ResetTimeout has elapsed since the circuit opened.
//   - half-open: MaxRequests trial calls pass. A failure reopens the circuit,
//     MaxRequests consecutive successes close it.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the circuit breaker name for logging and metrics
	Name string

	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold uint32

	// ResetTimeout is how long the circuit stays open before a trial call is allowed
	ResetTimeout time.Duration

	// MaxRequests is the number of trial calls allowed in half-open state
	MaxRequests uint32

	// Interval is the cyclic period of the closed state to clear counts.
	// Zero keeps counts until the next state change.
	Interval time.Duration
}

// DefaultConfig returns a default configuration for circuit breakers:
// open after 5 consecutive failures, retry after 60s with a single trial call.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		MaxRequests:      1,
	}
}

// UpstreamConfig returns the configuration for the credit bureau API.
func UpstreamConfig() Config {
	return DefaultConfig("sentinel-api")
}

// StateObserver is notified of state transitions. It is called while the
// breaker holds its internal lock, so it must not call back into the breaker
// and must hand slow work (network alerts) off to another goroutine.
type StateObserver interface {
	OnStateChange(name string, from, to gobreaker.State)
}

// StateObserverFunc adapts a function to StateObserver.
type StateObserverFunc func(name string, from, to gobreaker.State)

// OnStateChange implements StateObserver.
func (f StateObserverFunc) OnStateChange(name string, from, to gobreaker.State) {
	f(name, from, to)
}

// Option configures a CircuitBreaker.
type Option func(*[]StateObserver)

// WithStateObserver registers an observer for state transitions.
func WithStateObserver(o StateObserver) Option {
	return func(observers *[]StateObserver) {
		*observers = append(*observers, o)
	}
}

// CircuitBreaker wraps gobreaker.TwoStepCircuitBreaker so callers can ask for
// admission first and report the outcome later.
type CircuitBreaker struct {
	breaker *gobreaker.TwoStepCircuitBreaker
	name    string
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config, opts ...Option) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	var observers []StateObserver
	for _, opt := range opts {
		opt(&observers)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			for _, o := range observers {
				o.OnStateChange(name, from, to)
			}
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewTwoStepCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Admit asks the breaker whether a call may proceed. On success it returns a
// done callback that must be invoked exactly once with the call's outcome.
// When the circuit is open, or the half-open trial slot is taken, it returns
// gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
func (cb *CircuitBreaker) Admit() (func(success bool), error) {
	return cb.breaker.Allow()
}

// Execute runs fn through the circuit breaker, counting a non-nil error as a failure.
// If the circuit is open, it returns ErrOpenState immediately.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	done, err := cb.breaker.Allow()
	if err != nil {
		return nil, err
	}

	success := false
	defer func() { done(success) }()

	result, err := fn()
	success = err == nil
	return result, err
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Counts returns the request counts of the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
