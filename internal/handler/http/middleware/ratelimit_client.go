package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"credit-gateway/internal/handler/http/auth"
	"credit-gateway/internal/handler/http/respond"
	"credit-gateway/pkg/ratelimit"
)

// CodeRateLimitExceeded is the error code of a 429 from the client limiter.
const CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

const msgClientRateLimited = "Demasiadas solicitudes desde esta IP. Intenta de nuevo más tarde."

// Checker decides whether a request for a key may proceed.
type Checker interface {
	Check(ctx context.Context, key string) *ratelimit.RateLimitDecision
}

// ClientRateLimiter limits the whole API per client, keyed by IP and
// authenticated user. It sits in front of the per-DNI limiter of the credit
// gateway and protects the process rather than the bureau.
type ClientRateLimiter struct {
	limiter   Checker
	extractor IPExtractor
	skipRoles []string
	logger    *slog.Logger
}

// ClientRateLimiterOption configures a ClientRateLimiter.
type ClientRateLimiterOption func(*ClientRateLimiter)

// WithSkipRoles exempts authenticated users with one of roles.
func WithSkipRoles(roles ...string) ClientRateLimiterOption {
	return func(rl *ClientRateLimiter) { rl.skipRoles = roles }
}

// WithLimiterLogger sets the logger.
func WithLimiterLogger(logger *slog.Logger) ClientRateLimiterOption {
	return func(rl *ClientRateLimiter) { rl.logger = logger }
}

// NewClientRateLimiter creates the middleware. A nil extractor uses RemoteAddr.
func NewClientRateLimiter(limiter Checker, extractor IPExtractor, opts ...ClientRateLimiterOption) *ClientRateLimiter {
	if extractor == nil {
		extractor = &RemoteAddrExtractor{}
	}
	rl := &ClientRateLimiter{
		limiter:   limiter,
		extractor: extractor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Key returns the limiter key of r: "<ip>:<user id>" or "<ip>:anonymous".
func (rl *ClientRateLimiter) Key(r *http.Request) string {
	userID := "anonymous"
	if u, ok := auth.UserFromContext(r.Context()); ok {
		userID = u.ID
	}
	return ClientIP(r, rl.extractor) + ":" + userID
}

// Middleware enforces the limit and sets X-RateLimit-* headers on every
// checked response.
func (rl *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.UserFromContext(r.Context()); ok && slices.Contains(rl.skipRoles, u.Role) {
			next.ServeHTTP(w, r)
			return
		}

		decision := rl.limiter.Check(r.Context(), rl.Key(r))
		SetRateLimitHeaders(w, decision)
		if !decision.Allowed {
			rl.logger.Warn("client rate limit exceeded",
				slog.String("key", decision.Key),
				slog.Int("limit", decision.Limit),
				slog.Int64("retry_after", decision.RetryAfterSeconds()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			WriteRateLimited(w, decision, msgClientRateLimited, CodeRateLimitExceeded)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetRateLimitHeaders writes X-RateLimit-Limit, -Remaining and -Reset (unix
// seconds) for decision.
func SetRateLimitHeaders(w http.ResponseWriter, decision *ratelimit.RateLimitDecision) {
	if decision == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAtUnix(), 10))
}

// WriteRateLimited answers 429 with Retry-After and the rate limit headers.
func WriteRateLimited(w http.ResponseWriter, decision *ratelimit.RateLimitDecision, msg, code string) {
	SetRateLimitHeaders(w, decision)
	if decision != nil {
		w.Header().Set("Retry-After", strconv.FormatInt(decision.RetryAfterSeconds(), 10))
	}
	respond.Message(w, http.StatusTooManyRequests, msg, code)
}
