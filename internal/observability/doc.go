// Package observability groups the gateway's telemetry:
//
//   - logging: slog setup, request-scoped loggers
//   - metrics: process-wide Prometheus collectors for HTTP, breakers, assessments and the database
//   - slo: rolling service level indicators fed by the HTTP middleware
//   - tracing: OpenTelemetry spans for inbound requests and bureau calls
//
// Bureau-specific collectors live next to the client in infra/sentinel so
// tests can register them on a private registry.
package observability
