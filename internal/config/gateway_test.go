package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gatewayEnv = []string{
	"SENTINEL_API_URL", "SENTINEL_API_TIMEOUT", "SENTINEL_API_RETRY_ATTEMPTS",
	"SENTINEL_CACHE_TTL", "SENTINEL_CACHE_MAX_KEYS",
	"SENTINEL_RATE_LIMIT_WINDOW", "SENTINEL_RATE_LIMIT_MAX", "RATELIMIT_MAX_KEYS",
	"SENTINEL_BREAKER_THRESHOLD", "SENTINEL_BREAKER_RESET",
	"HTTP_ADDR", "GRPC_ADDR", "SENTINEL_REQUEST_TIMEOUT",
	"AUTH_ENABLED", "AUTH_PUBLIC_ENDPOINTS", "JWT_SECRET",
	"JWT_ISSUER", "JWT_AUDIENCE", "AUTH_ALLOWED_ROLES",
	"SLACK_WEBHOOK_URL", "DISCORD_WEBHOOK_URL", "DATABASE_URL",
	"CORS_ALLOWED_ORIGINS", "HSTS_ENABLED", "TRUSTED_PROXIES_ENABLED", "TRUSTED_PROXIES",
	"CLIENT_RATE_LIMIT_WINDOW", "CLIENT_RATE_LIMIT_MAX", "CLIENT_RATE_LIMIT_SKIP_ROLES",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearGatewayEnv(t *testing.T) {
	t.Helper()
	for _, key := range gatewayEnv {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearGatewayEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "https://sentinel-api-5c7y.vercel.app", cfg.Sentinel.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Sentinel.Timeout)
	assert.Equal(t, 3, cfg.Sentinel.RetryAttempts)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Cache.MaxKeys)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, time.Minute, cfg.Breaker.ResetTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearGatewayEnv(t)
	t.Setenv("SENTINEL_API_URL", "http://bureau.internal:9000")
	t.Setenv("SENTINEL_API_TIMEOUT", "2500")
	t.Setenv("SENTINEL_API_RETRY_ATTEMPTS", "5")
	t.Setenv("SENTINEL_CACHE_TTL", "600")
	t.Setenv("SENTINEL_RATE_LIMIT_WINDOW", "30000")
	t.Setenv("SENTINEL_RATE_LIMIT_MAX", "3")
	t.Setenv("SENTINEL_BREAKER_THRESHOLD", "2")
	t.Setenv("SENTINEL_BREAKER_RESET", "15000")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret-s3cret-s3cret-s3cret-s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://bureau.internal:9000", cfg.Sentinel.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Sentinel.Timeout)
	assert.Equal(t, 5, cfg.SentinelClientConfig().Retry.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.CacheStoreConfig().DefaultTTL)
	assert.Equal(t, 30*time.Second, cfg.RateLimiterConfig().Window)
	assert.Equal(t, 3, cfg.RateLimiterConfig().MaxRequests)
	assert.Equal(t, "dni", cfg.RateLimiterConfig().LimiterType)
	assert.Equal(t, uint32(2), cfg.BreakerSettings().FailureThreshold)
	assert.Equal(t, 15*time.Second, cfg.BreakerSettings().ResetTimeout)
	assert.Equal(t, "sentinel-api", cfg.BreakerSettings().Name)
	assert.True(t, cfg.Auth.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearGatewayEnv(t)
	path := writeConfig(t, `
sentinel:
  base_url: https://bureau.example.com
  timeout: 4s
cache:
  ttl: 15m
rate_limit:
  max_requests: 20
auth:
  public_endpoints: ["/health", "/metrics"]
`)
	t.Setenv("SENTINEL_RATE_LIMIT_MAX", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://bureau.example.com", cfg.Sentinel.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.Sentinel.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 7, cfg.RateLimit.MaxRequests, "environment wins over file")
	assert.Equal(t, time.Minute, cfg.RateLimit.Window, "unset keys keep defaults")
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.Auth.PublicEndpoints)
}

func TestLoad_FileErrors(t *testing.T) {
	clearGatewayEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "sentinel: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Sentinel.BaseURL = "ftp://bureau"
	cfg.Cache.TTL = 0
	cfg.Breaker.FailureThreshold = 0
	cfg.Auth.Enabled = true
	cfg.RateLimit.MaxRequests = 0
	cfg.Alerts.SlackWebhookURL = "http://hooks.slack.com/x"

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"base url",
		"cache ttl must be positive",
		"breaker failure threshold",
		"JWT_SECRET is required",
		"rate limit",
		"slack webhook url",
	} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}

func TestValidate_Default(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
