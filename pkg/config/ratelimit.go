package config

import (
	"log/slog"
	"strconv"

	"credit-gateway/pkg/ratelimit"
)

// LoadRateLimitConfig overrides base with the per-subject limiter settings
// from the environment. Non-positive values keep the value from base.
//
//   - SENTINEL_RATE_LIMIT_WINDOW: window length in milliseconds
//   - SENTINEL_RATE_LIMIT_MAX: requests per subject per window
//   - RATELIMIT_MAX_KEYS: subjects tracked in memory, 0 for unbounded
func LoadRateLimitConfig(base ratelimit.Config) ratelimit.Config {
	cfg := base

	if w := GetEnvMillis("SENTINEL_RATE_LIMIT_WINDOW", base.Window); w > 0 {
		cfg.Window = w
	} else {
		warnInvalid("SENTINEL_RATE_LIMIT_WINDOW", w.String(), base.Window)
	}

	if n := GetEnvInt("SENTINEL_RATE_LIMIT_MAX", base.MaxRequests); n > 0 {
		cfg.MaxRequests = n
	} else {
		warnInvalid("SENTINEL_RATE_LIMIT_MAX", strconv.Itoa(n), base.MaxRequests)
	}

	if n := GetEnvInt("RATELIMIT_MAX_KEYS", base.MaxKeys); n >= 0 {
		cfg.MaxKeys = n
	} else {
		warnInvalid("RATELIMIT_MAX_KEYS", strconv.Itoa(n), base.MaxKeys)
	}

	slog.Debug("rate limit configuration loaded",
		slog.Duration("window", cfg.Window),
		slog.Int("max_requests", cfg.MaxRequests),
		slog.Int("max_keys", cfg.MaxKeys))
	return cfg
}
