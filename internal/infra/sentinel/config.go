package sentinel

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"credit-gateway/internal/resilience/retry"
)

const (
	// DefaultBaseURL is the public Sentinel credit bureau deployment.
	DefaultBaseURL = "https://sentinel-api-5c7y.vercel.app"

	defaultTimeout     = 10 * time.Second
	defaultMaxBodySize = 1 << 20 // 1MB
)

// TTL classes for cached bureau data.
const (
	PersonTTL  = 30 * time.Minute
	DebtsTTL   = 30 * time.Minute
	HistoryTTL = time.Hour
	ReportTTL  = time.Hour
	AlertsTTL  = 15 * time.Minute
	InfoTTL    = 24 * time.Hour
)

// Config holds the settings of the bureau client.
type Config struct {
	// BaseURL is the bureau root, without trailing slash.
	BaseURL string

	// Timeout bounds a single HTTP attempt (connect, headers and body).
	Timeout time.Duration

	// Retry controls attempts and backoff for transient failures.
	// Retry.MaxAttempts is the SENTINEL_API_RETRY_ATTEMPTS setting.
	Retry retry.Config

	// MaxBodySize caps the bytes read from a response body.
	MaxBodySize int64
}

// DefaultConfig returns the production defaults: 10s per attempt and
// 3 attempts with waits of 2s and 4s.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     defaultTimeout,
		Retry:       retry.UpstreamConfig(),
		MaxBodySize: defaultMaxBodySize,
	}
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("base url %q must be an absolute http(s) url", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("max body size must be positive, got %d", c.MaxBodySize))
	}

	return errors.Join(errs...)
}
