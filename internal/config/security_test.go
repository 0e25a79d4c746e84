package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurity_Defaults(t *testing.T) {
	clearGatewayEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultCORSOrigins, cfg.Security.CORSAllowedOrigins)
	assert.False(t, cfg.Security.HSTS)
	assert.False(t, cfg.Security.TrustedProxies.Enabled)

	limiter := cfg.Security.ClientLimiterConfig()
	assert.Equal(t, 15*time.Minute, limiter.Window)
	assert.Equal(t, 100, limiter.MaxRequests)
	assert.Equal(t, "client", limiter.LimiterType)
	assert.Equal(t, []string{"admin"}, cfg.Security.ClientLimit.SkipRoles)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestSecurity_EnvOverrides(t *testing.T) {
	clearGatewayEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("HSTS_ENABLED", "true")
	t.Setenv("TRUSTED_PROXIES_ENABLED", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")
	t.Setenv("CLIENT_RATE_LIMIT_WINDOW", "60000")
	t.Setenv("CLIENT_RATE_LIMIT_MAX", "25")
	t.Setenv("CLIENT_RATE_LIMIT_SKIP_ROLES", "admin,auditor")
	t.Setenv("JWT_ISSUER", "login-service")
	t.Setenv("AUTH_ALLOWED_ROLES", "analyst,admin")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Security.CORSAllowedOrigins)
	assert.True(t, cfg.Security.HSTS)
	assert.True(t, cfg.Security.TrustedProxies.Enabled)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.Security.TrustedProxies.CIDRs)
	assert.Equal(t, time.Minute, cfg.Security.ClientLimiterConfig().Window)
	assert.Equal(t, 25, cfg.Security.ClientLimiterConfig().MaxRequests)
	assert.Equal(t, []string{"admin", "auditor"}, cfg.Security.ClientLimit.SkipRoles)
	assert.Equal(t, "login-service", cfg.Auth.Issuer)
	assert.Equal(t, []string{"analyst", "admin"}, cfg.Auth.AllowedRoles)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestSecurity_FromFile(t *testing.T) {
	clearGatewayEnv(t)
	path := writeConfig(t, `
security:
  cors_allowed_origins: ["https://risk.example.com"]
  trusted_proxies:
    enabled: true
    cidrs: ["172.16.0.0/12"]
  client_rate_limit:
    max_requests: 40
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://risk.example.com"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, []string{"172.16.0.0/12"}, cfg.Security.TrustedProxies.CIDRs)
	assert.Equal(t, 40, cfg.Security.ClientLimit.MaxRequests)
	assert.Equal(t, 15*time.Minute, cfg.Security.ClientLimit.Window)
}

func TestSecurity_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GatewayConfig)
		want   string
	}{
		{
			name:   "wildcard origin",
			mutate: func(c *GatewayConfig) { c.Security.CORSAllowedOrigins = []string{"*"} },
			want:   "wildcard origin",
		},
		{
			name:   "origin without scheme",
			mutate: func(c *GatewayConfig) { c.Security.CORSAllowedOrigins = []string{"app.example.com"} },
			want:   "invalid origin",
		},
		{
			name: "proxies enabled without cidrs",
			mutate: func(c *GatewayConfig) {
				c.Security.TrustedProxies.Enabled = true
			},
			want: "without any cidr",
		},
		{
			name: "bad proxy entry",
			mutate: func(c *GatewayConfig) {
				c.Security.TrustedProxies = TrustedProxiesConfig{Enabled: true, CIDRs: []string{"10.0.0.0/99"}}
			},
			want: "invalid entry",
		},
		{
			name:   "zero client limit",
			mutate: func(c *GatewayConfig) { c.Security.ClientLimit.MaxRequests = 0 },
			want:   "client rate limit",
		},
		{
			name: "short jwt secret",
			mutate: func(c *GatewayConfig) {
				c.Auth.Enabled = true
				c.Auth.JWTSecret = "short"
			},
			want: "at least 32 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSecurity_DisabledProxiesIgnoreEntries(t *testing.T) {
	cfg := Default()
	cfg.Security.TrustedProxies.CIDRs = []string{"not-a-cidr"}
	assert.NoError(t, cfg.Validate())
}
