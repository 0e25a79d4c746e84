package http

import (
	"net/http"

	"credit-gateway/internal/handler/http/respond"
)

// InputLimits bounds the size of incoming requests.
type InputLimits struct {
	MaxAuthHeader int
	MaxPath       int
	MaxQuery      int
	MaxBody       int64
}

// DefaultInputLimits suits the gateway's routes, none of which take a
// large body.
func DefaultInputLimits() InputLimits {
	return InputLimits{
		MaxAuthHeader: 8 << 10,
		MaxPath:       2 << 10,
		MaxQuery:      2 << 10,
		MaxBody:       1 << 20,
	}
}

// InputValidation rejects oversized Authorization headers (400) and URIs
// (414) before any other work, and caps the body.
func InputValidation(limits InputLimits) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		next = LimitRequestBody(limits.MaxBody)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > limits.MaxAuthHeader {
				respond.Message(w, http.StatusBadRequest, "authorization header too large", "validation")
				return
			}
			if len(r.URL.Path) > limits.MaxPath || len(r.URL.RawQuery) > limits.MaxQuery {
				respond.Message(w, http.StatusRequestURITooLong, "URI too long", "validation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
