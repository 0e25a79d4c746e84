// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the process-wide metrics:
//   - HTTP request metrics (duration, count, size)
//   - Circuit breaker state and transitions
//   - Credit assessment and client credit check counters
//   - Database query metrics
//
// All metrics are registered with the Prometheus default registry and exposed
// via the /metrics endpoint. Component metrics with their own lifecycles
// (upstream client, cache, rate limiter) take a prometheus.Registerer instead.
//
// Example usage:
//
//	cb := circuitbreaker.New(cfg,
//	    circuitbreaker.WithStateObserver(circuitbreaker.StateObserverFunc(metrics.RecordBreakerTransition)))
//
//	start := time.Now()
//	err := repo.UpdateCreditInfo(ctx, id, info)
//	metrics.RecordDBQuery("update_credit_info", time.Since(start))
package metrics
