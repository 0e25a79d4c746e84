// Package config loads the gateway configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"credit-gateway/internal/infra/sentinel"
	"credit-gateway/internal/resilience/circuitbreaker"
	"credit-gateway/pkg/cache"
	pkgconfig "credit-gateway/pkg/config"
	"credit-gateway/pkg/ratelimit"
)

// SentinelConfig configures the upstream bureau client.
type SentinelConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
}

// CacheConfig configures the in-process response cache.
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	MaxKeys int           `yaml:"max_keys"`
}

// RateLimitConfig configures the per-DNI request limiter.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
	MaxKeys     int           `yaml:"max_keys"`
}

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failure_threshold"`
	ResetTimeout     time.Duration `yaml:"reset_timeout"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	GRPCAddr       string        `yaml:"grpc_addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// AuthConfig configures JWT authentication on /api/ routes.
type AuthConfig struct {
	Enabled         bool     `yaml:"enabled"`
	PublicEndpoints []string `yaml:"public_endpoints"`
	// Issuer and Audience are checked when set.
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	// AllowedRoles restricts access; empty allows every role.
	AllowedRoles []string `yaml:"allowed_roles"`
	// JWTSecret is only read from JWT_SECRET.
	JWTSecret string `yaml:"-"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

// AlertsConfig holds the optional webhook destinations for breaker alerts.
type AlertsConfig struct {
	SlackWebhookURL   string `yaml:"slack_webhook_url"`
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
}

// GatewayConfig is the runtime configuration shared by the API server and the
// re-check worker. The worker schedule lives in the worker package.
type GatewayConfig struct {
	Sentinel  SentinelConfig  `yaml:"sentinel"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Breaker   BreakerConfig   `yaml:"circuit_breaker"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Security  SecurityConfig  `yaml:"security"`
	Log       LogConfig       `yaml:"log"`
	// DatabaseURL is only read from DATABASE_URL.
	DatabaseURL string `yaml:"-"`
}

// Default returns the configuration used when neither file nor environment
// override a value.
func Default() GatewayConfig {
	return GatewayConfig{
		Sentinel: SentinelConfig{
			BaseURL:       sentinel.DefaultBaseURL,
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
		},
		Cache:     CacheConfig{TTL: time.Hour, MaxKeys: 1000},
		RateLimit: RateLimitConfig{Window: time.Minute, MaxRequests: 10, MaxKeys: 10000},
		Breaker:   BreakerConfig{FailureThreshold: 5, ResetTimeout: time.Minute},
		Server: ServerConfig{
			Addr:           ":8080",
			GRPCAddr:       ":9090",
			RequestTimeout: 10 * time.Second,
		},
		Auth:     AuthConfig{PublicEndpoints: []string{"/health", "/ready", "/live", "/metrics", "/swagger/", "/api/sentinel/health"}},
		Security: defaultSecurity(),
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is not empty) and the environment, in that order of precedence.
// The path is provided by the operator through SENTINEL_CONFIG_FILE.
func Load(path string) (GatewayConfig, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path comes from operator configuration, not user input
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides c with environment variables. Current values act as the
// defaults, so file settings survive unset variables.
func (c *GatewayConfig) applyEnv() {
	c.Sentinel.BaseURL = pkgconfig.GetEnvString("SENTINEL_API_URL", c.Sentinel.BaseURL)
	c.Sentinel.Timeout = pkgconfig.GetEnvMillis("SENTINEL_API_TIMEOUT", c.Sentinel.Timeout)
	c.Sentinel.RetryAttempts = pkgconfig.GetEnvInt("SENTINEL_API_RETRY_ATTEMPTS", c.Sentinel.RetryAttempts)

	c.Cache.TTL = time.Duration(pkgconfig.GetEnvInt("SENTINEL_CACHE_TTL", int(c.Cache.TTL/time.Second))) * time.Second
	c.Cache.MaxKeys = pkgconfig.GetEnvInt("SENTINEL_CACHE_MAX_KEYS", c.Cache.MaxKeys)

	rl := pkgconfig.LoadRateLimitConfig(ratelimit.Config{
		Window:      c.RateLimit.Window,
		MaxRequests: c.RateLimit.MaxRequests,
		MaxKeys:     c.RateLimit.MaxKeys,
	})
	c.RateLimit.Window = rl.Window
	c.RateLimit.MaxRequests = rl.MaxRequests
	c.RateLimit.MaxKeys = rl.MaxKeys

	c.Breaker.FailureThreshold = uint32(max(0, pkgconfig.GetEnvInt("SENTINEL_BREAKER_THRESHOLD", int(c.Breaker.FailureThreshold))))
	c.Breaker.ResetTimeout = pkgconfig.GetEnvMillis("SENTINEL_BREAKER_RESET", c.Breaker.ResetTimeout)

	c.Server.Addr = pkgconfig.GetEnvString("HTTP_ADDR", c.Server.Addr)
	c.Server.GRPCAddr = pkgconfig.GetEnvString("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.RequestTimeout = pkgconfig.GetEnvMillis("SENTINEL_REQUEST_TIMEOUT", c.Server.RequestTimeout)

	c.Auth.Enabled = pkgconfig.GetEnvBool("AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.PublicEndpoints = pkgconfig.GetEnvStringList("AUTH_PUBLIC_ENDPOINTS", c.Auth.PublicEndpoints)
	c.Auth.Issuer = pkgconfig.GetEnvString("JWT_ISSUER", c.Auth.Issuer)
	c.Auth.Audience = pkgconfig.GetEnvString("JWT_AUDIENCE", c.Auth.Audience)
	c.Auth.AllowedRoles = pkgconfig.GetEnvStringList("AUTH_ALLOWED_ROLES", c.Auth.AllowedRoles)
	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")

	c.Security.applyEnv()

	c.Log.Level = pkgconfig.GetEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = pkgconfig.GetEnvString("LOG_FORMAT", c.Log.Format)

	c.Alerts.SlackWebhookURL = pkgconfig.GetEnvString("SLACK_WEBHOOK_URL", c.Alerts.SlackWebhookURL)
	c.Alerts.DiscordWebhookURL = pkgconfig.GetEnvString("DISCORD_WEBHOOK_URL", c.Alerts.DiscordWebhookURL)

	c.DatabaseURL = os.Getenv("DATABASE_URL")
}

// Validate reports every invalid setting at once.
func (c *GatewayConfig) Validate() error {
	var errs []error

	if err := c.SentinelClientConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache ttl must be positive"))
	}
	if c.Cache.MaxKeys <= 0 {
		errs = append(errs, errors.New("cache max keys must be positive"))
	}
	rl := c.RateLimiterConfig()
	if err := rl.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rate limit: %w", err))
	}
	if c.Breaker.FailureThreshold == 0 {
		errs = append(errs, errors.New("breaker failure threshold must be at least 1"))
	}
	if c.Breaker.ResetTimeout <= 0 {
		errs = append(errs, errors.New("breaker reset timeout must be positive"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED=true"))
	}
	if c.Auth.Enabled && len(c.Auth.JWTSecret) > 0 && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	errs = append(errs, c.Security.validate()...)
	for name, raw := range map[string]string{"slack": c.Alerts.SlackWebhookURL, "discord": c.Alerts.DiscordWebhookURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s webhook url must be an absolute https url", name))
		}
	}

	return errors.Join(errs...)
}

// SentinelClientConfig returns the upstream client configuration.
func (c *GatewayConfig) SentinelClientConfig() sentinel.Config {
	cfg := sentinel.DefaultConfig()
	cfg.BaseURL = c.Sentinel.BaseURL
	cfg.Timeout = c.Sentinel.Timeout
	cfg.Retry.MaxAttempts = c.Sentinel.RetryAttempts
	return cfg
}

// CacheStoreConfig returns the cache configuration.
func (c *GatewayConfig) CacheStoreConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.DefaultTTL = c.Cache.TTL
	cfg.MaxKeys = c.Cache.MaxKeys
	return cfg
}

// RateLimiterConfig returns the per-DNI limiter configuration.
func (c *GatewayConfig) RateLimiterConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.Window = c.RateLimit.Window
	cfg.MaxRequests = c.RateLimit.MaxRequests
	cfg.MaxKeys = c.RateLimit.MaxKeys
	cfg.LimiterType = "dni"
	return cfg
}

// BreakerSettings returns the upstream circuit breaker configuration.
func (c *GatewayConfig) BreakerSettings() circuitbreaker.Config {
	cfg := circuitbreaker.UpstreamConfig()
	cfg.FailureThreshold = c.Breaker.FailureThreshold
	cfg.ResetTimeout = c.Breaker.ResetTimeout
	return cfg
}
