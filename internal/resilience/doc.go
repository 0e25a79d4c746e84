// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic used to call the
// credit bureau and the database safely.
//
// The package supports:
//   - Circuit breakers with explicit admission and outcome reporting (circuitbreaker)
//   - Retry logic with exponential backoff and optional jitter (retry)
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.UpstreamConfig())
//	done, err := cb.Admit()
//	if err != nil {
//	    return err // circuit open
//	}
//	err = retry.WithBackoff(ctx, retry.UpstreamConfig(), func() error {
//	    return callBureau()
//	})
//	done(err == nil)
package resilience
