package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	pkgconfig "credit-gateway/pkg/config"
	"credit-gateway/pkg/ratelimit"
)

// DefaultCORSOrigins are the front-end origins allowed when nothing is configured.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// SecurityConfig configures the HTTP boundary protections.
type SecurityConfig struct {
	// CORSAllowedOrigins lists exact origins. "*" is not accepted.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// HSTS adds Strict-Transport-Security; enable only behind TLS.
	HSTS           bool                 `yaml:"hsts"`
	TrustedProxies TrustedProxiesConfig `yaml:"trusted_proxies"`
	ClientLimit    ClientLimitConfig    `yaml:"client_rate_limit"`
}

// TrustedProxiesConfig controls whether X-Forwarded-For and X-Real-IP are
// honored, and from which peers.
type TrustedProxiesConfig struct {
	Enabled bool     `yaml:"enabled"`
	CIDRs   []string `yaml:"cidrs"`
}

// ClientLimitConfig configures the per-caller limiter applied to all /api/
// routes, keyed by client IP and user.
type ClientLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
	MaxKeys     int           `yaml:"max_keys"`
	// SkipRoles are exempt, e.g. "admin".
	SkipRoles []string `yaml:"skip_roles"`
}

func defaultSecurity() SecurityConfig {
	return SecurityConfig{
		CORSAllowedOrigins: DefaultCORSOrigins,
		ClientLimit: ClientLimitConfig{
			Window:      15 * time.Minute,
			MaxRequests: 100,
			MaxKeys:     10000,
			SkipRoles:   []string{"admin"},
		},
	}
}

func (s *SecurityConfig) applyEnv() {
	s.CORSAllowedOrigins = pkgconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", s.CORSAllowedOrigins)
	s.HSTS = pkgconfig.GetEnvBool("HSTS_ENABLED", s.HSTS)

	s.TrustedProxies.Enabled = pkgconfig.GetEnvBool("TRUSTED_PROXIES_ENABLED", s.TrustedProxies.Enabled)
	s.TrustedProxies.CIDRs = pkgconfig.GetEnvStringList("TRUSTED_PROXIES", s.TrustedProxies.CIDRs)

	s.ClientLimit.Window = pkgconfig.GetEnvMillis("CLIENT_RATE_LIMIT_WINDOW", s.ClientLimit.Window)
	s.ClientLimit.MaxRequests = pkgconfig.GetEnvInt("CLIENT_RATE_LIMIT_MAX", s.ClientLimit.MaxRequests)
	s.ClientLimit.SkipRoles = pkgconfig.GetEnvStringList("CLIENT_RATE_LIMIT_SKIP_ROLES", s.ClientLimit.SkipRoles)
}

func (s *SecurityConfig) validate() []error {
	var errs []error

	for _, origin := range s.CORSAllowedOrigins {
		if origin == "*" {
			errs = append(errs, errors.New("cors: wildcard origin is not allowed"))
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("cors: invalid origin %q", origin))
		}
	}

	if s.TrustedProxies.Enabled {
		if len(s.TrustedProxies.CIDRs) == 0 {
			errs = append(errs, errors.New("trusted proxies enabled without any cidr"))
		}
		for _, entry := range s.TrustedProxies.CIDRs {
			if !validProxyEntry(entry) {
				errs = append(errs, fmt.Errorf("trusted proxies: invalid entry %q", entry))
			}
		}
	}

	limiter := s.ClientLimiterConfig()
	if err := limiter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("client rate limit: %w", err))
	}
	return errs
}

func validProxyEntry(entry string) bool {
	entry = strings.TrimSpace(entry)
	if _, err := netip.ParsePrefix(entry); err == nil {
		return true
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

// ClientLimiterConfig returns the per-caller limiter configuration.
func (s *SecurityConfig) ClientLimiterConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.Window = s.ClientLimit.Window
	cfg.MaxRequests = s.ClientLimit.MaxRequests
	cfg.MaxKeys = s.ClientLimit.MaxKeys
	cfg.LimiterType = "client"
	return cfg
}
