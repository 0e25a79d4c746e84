package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Any non-slash segment is matched in place of a DNI so that malformed
// identifiers never become label values either.
var pathPatterns = []*PathPattern{
	// Bureau lookups keyed by DNI
	{Pattern: regexp.MustCompile(`^/api/sentinel/person/[^/]+$`), Template: "/api/sentinel/person/:dni"},
	{Pattern: regexp.MustCompile(`^/api/sentinel/debts/[^/]+$`), Template: "/api/sentinel/debts/:dni"},
	{Pattern: regexp.MustCompile(`^/api/sentinel/history/[^/]+$`), Template: "/api/sentinel/history/:dni"},
	{Pattern: regexp.MustCompile(`^/api/sentinel/report/[^/]+$`), Template: "/api/sentinel/report/:dni"},
	{Pattern: regexp.MustCompile(`^/api/sentinel/alerts/[^/]+$`), Template: "/api/sentinel/alerts/:dni"},
	{Pattern: regexp.MustCompile(`^/api/sentinel/assessment/[^/]+$`), Template: "/api/sentinel/assessment/:dni"},

	// Cache administration; stats must win over the DNI form
	{Pattern: regexp.MustCompile(`^/api/sentinel/cache/stats$`), Template: "/api/sentinel/cache/stats"},
	{Pattern: regexp.MustCompile(`^/api/sentinel/cache/[^/]+$`), Template: "/api/sentinel/cache/:dni"},

	// Client credit checks
	{Pattern: regexp.MustCompile(`^/api/clients/[^/]+/credit-check$`), Template: "/api/clients/:id/credit-check"},
	{Pattern: regexp.MustCompile(`^/api/clients/[^/]+/credit-assessment$`), Template: "/api/clients/:id/credit-assessment"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label
// cardinality explosion and to keep subject identifiers out of metrics.
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/api/sentinel/person/12345678")     // "/api/sentinel/person/:dni"
//	NormalizePath("/api/sentinel/cache/stats")         // "/api/sentinel/cache/stats"
//	NormalizePath("/api/clients/7/credit-check")       // "/api/clients/:id/credit-check"
//	NormalizePath("/health")                           // "/health" (unchanged)
//	NormalizePath("/unknown/path/123")                 // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/api/sentinel/debts/12345678?x=1")  // "/api/sentinel/debts/:dni"
//	NormalizePath("/api/sentinel/debts/12345678/")     // "/api/sentinel/debts/:dni"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization: the templates plus the static endpoints (health,
// ready, live, metrics, info, cache, sentinel health).
func GetExpectedCardinality() int {
	const staticCount = 8
	return len(pathPatterns) + staticCount
}
