package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"credit-gateway/internal/handler/http/auth"
	"credit-gateway/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClientLimiter(max int, opts ...ClientRateLimiterOption) *ClientRateLimiter {
	limiter := ratelimit.NewSubjectLimiter(
		ratelimit.NewInMemoryStore(ratelimit.InMemoryStoreConfig{}),
		ratelimit.Config{Window: time.Minute, MaxRequests: max, LimiterType: "client"},
	)
	return NewClientRateLimiter(limiter, nil, opts...)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func clientRequest(remoteAddr string, user *auth.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/sentinel/person/12345678", nil)
	req.RemoteAddr = remoteAddr
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), *user))
	}
	return req
}

func TestClientRateLimiter_AllowsWithinLimit(t *testing.T) {
	h := newTestClientLimiter(2).Middleware(okHandler())

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, clientRequest("192.0.2.1:1000", nil))

		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), rr.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
		assert.Empty(t, rr.Header().Get("Retry-After"))
	}
}

func TestClientRateLimiter_DeniesOverLimit(t *testing.T) {
	h := newTestClientLimiter(1).Middleware(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, clientRequest("192.0.2.1:1000", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, clientRequest("192.0.2.1:2000", nil))

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	retryAfter, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.True(t, retryAfter > 0 && retryAfter <= 60, "Retry-After = %d", retryAfter)

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, CodeRateLimitExceeded, body.Code)
	assert.Equal(t, msgClientRateLimited, body.Error)
}

func TestClientRateLimiter_KeysByIPAndUser(t *testing.T) {
	rl := newTestClientLimiter(1)
	h := rl.Middleware(okHandler())

	alice := &auth.User{ID: "1", Role: "analyst"}
	bob := &auth.User{ID: "2", Role: "analyst"}

	for _, req := range []*http.Request{
		clientRequest("192.0.2.1:1000", nil),
		clientRequest("192.0.2.1:1000", alice),
		clientRequest("192.0.2.1:1000", bob),
		clientRequest("192.0.2.2:1000", nil),
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "key %s", rl.Key(req))
	}

	assert.Equal(t, "192.0.2.1:anonymous", rl.Key(clientRequest("192.0.2.1:1000", nil)))
	assert.Equal(t, "192.0.2.1:1", rl.Key(clientRequest("192.0.2.1:1000", alice)))
}

func TestClientRateLimiter_SkipRoles(t *testing.T) {
	h := newTestClientLimiter(1, WithSkipRoles("admin")).Middleware(okHandler())
	admin := &auth.User{ID: "9", Role: "admin"}

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, clientRequest("192.0.2.1:1000", admin))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"), "skipped requests are not counted")
	}
}

func TestWriteRateLimited_NilDecision(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteRateLimited(rr, nil, "Límite de consultas excedido. Intente más tarde", "rate_limit")

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Empty(t, rr.Header().Get("Retry-After"))
}
