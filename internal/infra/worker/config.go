package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	"credit-gateway/internal/pkg/config"
)

// WorkerConfig holds the configuration of the credit re-check worker.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Invalid environment values fall back to the defaults so the worker keeps
// running; every fallback is logged and counted in the config metrics.
type WorkerConfig struct {
	// CronSchedule is the standard 5-field cron expression of the re-check job.
	// Default: "0 3 * * *"
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "America/Lima"
	Timezone string

	// MaxAge is how old a stored assessment may get before it is re-checked.
	// Range: 1h-8760h
	// Default: 720h (30 days)
	MaxAge time.Duration

	// Batch caps the number of clients re-checked per run.
	// Range: 1-1000
	// Default: 50
	Batch int

	// JobTimeout bounds a single run.
	// Default: 30 minutes
	JobTimeout time.Duration

	// HealthPort is the port of the health and metrics server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with the default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 3 * * *",
		Timezone:     "America/Lima",
		MaxAge:       30 * 24 * time.Hour,
		Batch:        50,
		JobTimeout:   30 * time.Minute,
		HealthPort:   9091,
	}
}

func validateMaxAge(d time.Duration) error {
	return config.ValidateDuration(d, time.Hour, 365*24*time.Hour)
}

func validateBatch(v int) error {
	return config.ValidateIntRange(v, 1, 1000)
}

func validateJobTimeout(d time.Duration) error {
	return config.ValidateDuration(d, time.Minute, 4*time.Hour)
}

func validateHealthPort(v int) error {
	return config.ValidateIntRange(v, 1024, 65535)
}

// Validate checks every field and reports all failures together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateMaxAge(c.MaxAge); err != nil {
		errs = append(errs, fmt.Errorf("max age: %w", err))
	}
	if err := validateBatch(c.Batch); err != nil {
		errs = append(errs, fmt.Errorf("batch: %w", err))
	}
	if err := validateJobTimeout(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := validateHealthPort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the schedule's time zone.
func (c *WorkerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadConfigFromEnv loads the worker configuration with a fail-open strategy:
// an invalid value is replaced by its default, logged, and counted in metrics.
// The returned error is reserved for hard failures and is currently always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	t := config.NewTracker(logger, metrics.ConfigMetrics)

	cfg.CronSchedule = config.Apply(t, "cron_schedule", config.String("CREDIT_RECHECK_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.Timezone = config.Apply(t, "timezone", config.String("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.MaxAge = config.Apply(t, "max_age", config.Duration("CREDIT_RECHECK_MAX_AGE", cfg.MaxAge, validateMaxAge))
	cfg.Batch = config.Apply(t, "batch", config.Int("CREDIT_RECHECK_BATCH", cfg.Batch, validateBatch))
	cfg.JobTimeout = config.Apply(t, "job_timeout", config.Duration("CREDIT_RECHECK_TIMEOUT", cfg.JobTimeout, validateJobTimeout))
	cfg.HealthPort = config.Apply(t, "health_port", config.Int("WORKER_HEALTH_PORT", cfg.HealthPort, validateHealthPort))
	t.Done()

	return &cfg, nil
}
