package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(called *bool) http.Handler {
	cfg := DefaultCORSConfig([]string{"http://localhost:3000", "https://app.example.com/", "*"})
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodOptions, "/api/sentinel/person/12345678", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()

	corsHandler(&called).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, called, "preflight must not reach the handler")
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, PUT, DELETE, PATCH, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Equal(t, "86400", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_ActualRequestAllowedOrigin(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/api/sentinel/info", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()

	corsHandler(&called).ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"), "trailing slash in config is ignored")
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			var called bool
			req := httptest.NewRequest(method, "/api/sentinel/info", nil)
			req.Header.Set("Origin", "https://evil.example.com")
			req.Header.Set("Access-Control-Request-Method", "GET")
			rr := httptest.NewRecorder()

			corsHandler(&called).ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_WildcardIsNotHonoured(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/api/sentinel/info", nil)
	req.Header.Set("Origin", "https://random.example.org")
	rr := httptest.NewRecorder()

	corsHandler(&called).ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SameOriginRequest(t *testing.T) {
	var called bool
	rr := httptest.NewRecorder()

	corsHandler(&called).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, called)
	assert.Empty(t, rr.Header().Get("Vary"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
