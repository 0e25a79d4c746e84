// Package auth verifies the bearer tokens issued by the platform's login
// service and exposes the caller's identity to handlers and the audit log.
// The gateway never issues tokens itself.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"credit-gateway/internal/handler/http/respond"

	"github.com/golang-jwt/jwt/v5"
)

// Error codes returned in the "code" field of 401/403 responses.
const (
	CodeMissingToken     = "MISSING_TOKEN"
	CodeInvalidToken     = "INVALID_TOKEN_FORMAT"
	CodeTokenRejected    = "TOKEN_VERIFICATION_FAILED"
	CodeInsufficientRole = "INSUFFICIENT_PERMISSIONS"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errMalformed    = errors.New("malformed token")
	errRefreshToken = errors.New("refresh tokens cannot be used for API access")
	errNoIdentity   = errors.New("token carries no user id")
)

// Config configures the middleware.
type Config struct {
	// Secret is the HS256 signing key (JWT_SECRET).
	Secret []byte
	// Issuer and Audience are checked when set.
	Issuer   string
	Audience string
	// AllowedRoles restricts access to these roles. Empty allows any role.
	AllowedRoles []string
	// PublicEndpoints bypass authentication. Defaults to DefaultPublicEndpoints.
	PublicEndpoints []string
}

// User is the authenticated caller.
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// Claims is the token payload issued by the login service.
type Claims struct {
	UserID any    `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// Authz requires a valid HS256 bearer token on every non-public endpoint and
// stores the caller in the request context.
func Authz(cfg Config) func(http.Handler) http.Handler {
	public := cfg.PublicEndpoints
	if len(public) == 0 {
		public = DefaultPublicEndpoints
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path, public) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			user, code, err := authenticate(parser, cfg.Secret, r.Header.Get("Authorization"))
			if err != nil {
				recordDecision("", code, start)
				respond.Message(w, http.StatusUnauthorized, unauthorizedMessage(code), code)
				return
			}

			if len(cfg.AllowedRoles) > 0 && !slices.Contains(cfg.AllowedRoles, user.Role) {
				recordDecision(user.Role, CodeInsufficientRole, start)
				respond.Message(w, http.StatusForbidden, "Permisos insuficientes", CodeInsufficientRole)
				return
			}

			recordDecision(user.Role, "", start)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func authenticate(parser *jwt.Parser, secret []byte, header string) (User, string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return User{}, CodeMissingToken, errMissingToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return User{}, CodeMissingToken, errMissingToken
	}
	if strings.Count(raw, ".") != 2 {
		return User{}, CodeInvalidToken, errMalformed
	}

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return User{}, CodeTokenRejected, fmt.Errorf("verify token: %w", err)
	}
	if claims.Type == "refresh" {
		return User{}, CodeTokenRejected, errRefreshToken
	}

	id := claims.Subject
	if claims.UserID != nil {
		id = fmt.Sprint(claims.UserID)
	}
	if id == "" {
		return User{}, CodeTokenRejected, errNoIdentity
	}
	return User{ID: id, Email: claims.Email, Name: claims.Name, Role: claims.Role}, "", nil
}

func unauthorizedMessage(code string) string {
	switch code {
	case CodeMissingToken:
		return "Token de acceso requerido"
	case CodeInvalidToken:
		return "Formato de token inválido"
	default:
		return "Token inválido o expirado"
	}
}
