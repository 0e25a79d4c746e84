package auth

import "strings"

// DefaultPublicEndpoints are reachable without a token: orchestration probes,
// the bureau integration probe, Prometheus scraping and the API documentation.
var DefaultPublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
	"/api/sentinel/health",
}

// IsPublicEndpoint reports whether path is one of endpoints.
//
// Entries ending in '/' match by prefix (/swagger/ covers /swagger/index.html).
// Other entries match exactly, with an optional trailing slash or query
// string, so /health never covers /health/detail or /healthcheck.
func IsPublicEndpoint(path string, endpoints []string) bool {
	for _, endpoint := range endpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || path == endpoint+"/" || strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}
