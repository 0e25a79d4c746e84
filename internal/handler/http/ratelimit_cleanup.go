package http

import (
	"context"
	"log/slog"
	"time"

	"credit-gateway/pkg/config"
)

// DefaultCleanupInterval is the default sweep interval.
const DefaultCleanupInterval = 5 * time.Minute

// RateLimitSweeper is a rate limit store that can drop idle subjects.
type RateLimitSweeper interface {
	Cleanup(ctx context.Context, cutoff time.Time) (int, error)
	KeyCount(ctx context.Context) (int, error)
}

// CleanupConfig configures StartRateLimitCleanup.
type CleanupConfig struct {
	// Interval is how often to sweep. Default: 5 minutes.
	Interval time.Duration

	// WindowDuration is the limiter window. Subjects idle for twice this
	// long are dropped.
	WindowDuration time.Duration

	// LimiterType labels the log lines, e.g. "dni" or "client".
	LimiterType string
}

// LoadCleanupConfigFromEnv reads RATELIMIT_CLEANUP_INTERVAL (e.g. "5m").
// Invalid values fall back to DefaultCleanupInterval.
func LoadCleanupConfigFromEnv(window time.Duration, limiterType string) CleanupConfig {
	return CleanupConfig{
		Interval:       config.GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", DefaultCleanupInterval),
		WindowDuration: window,
		LimiterType:    limiterType,
	}
}

// StartRateLimitCleanup sweeps store every cfg.Interval until ctx is done.
// Lookups already prune the subject they touch; the sweep releases subjects
// that are never looked up again. It blocks, so run it in a goroutine.
func StartRateLimitCleanup(ctx context.Context, store RateLimitSweeper, cfg CleanupConfig, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	logger.Info("rate limit cleanup started",
		slog.String("limiter_type", cfg.LimiterType),
		slog.Duration("interval", cfg.Interval),
		slog.Duration("window_duration", cfg.WindowDuration))

	for {
		select {
		case <-ctx.Done():
			logger.Info("rate limit cleanup stopped", slog.String("limiter_type", cfg.LimiterType))
			return
		case <-ticker.C:
			sweepOnce(ctx, store, cfg, logger)
		}
	}
}

func sweepOnce(ctx context.Context, store RateLimitSweeper, cfg CleanupConfig, logger *slog.Logger) {
	cutoff := time.Now().Add(-2 * cfg.WindowDuration)
	removed, err := store.Cleanup(ctx, cutoff)
	if err != nil {
		logger.Error("rate limit cleanup failed",
			slog.String("limiter_type", cfg.LimiterType),
			slog.Any("error", err))
		return
	}

	active, _ := store.KeyCount(ctx)
	logger.Debug("rate limit cleanup completed",
		slog.String("limiter_type", cfg.LimiterType),
		slog.Int("keys_removed", removed),
		slog.Int("active_keys", active),
		slog.Time("cutoff_time", cutoff))
}
