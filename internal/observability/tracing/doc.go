// Package tracing provides OpenTelemetry tracing integration.
//
// The tracer is named "credit-gateway". Middleware starts a server span per
// HTTP request and echoes the trace id in X-Trace-Id; the upstream client
// starts a client span per bureau call. No exporter is installed here: the
// binaries use whatever global TracerProvider is configured.
//
// Example usage:
//
//	handler := tracing.Middleware(mux)
//
//	ctx, span := tracing.GetTracer().Start(ctx, "sentinel.assessment")
//	defer span.End()
package tracing
