package ratelimit

import (
	"fmt"
	"time"
)

// Config contains the configuration of a subject limiter.
type Config struct {
	// Window is the length of the sliding window.
	// Default: 60s
	Window time.Duration

	// MaxRequests is how many requests a subject may make per window.
	// Default: 10
	MaxRequests int

	// MaxKeys caps the number of subjects tracked in memory.
	// Default: 10000
	MaxKeys int

	// LimiterType labels metrics and logs (e.g. "dni").
	LimiterType string
}

// DefaultConfig returns the default configuration: 10 requests per minute per subject.
func DefaultConfig() Config {
	return Config{
		Window:      60 * time.Second,
		MaxRequests: 10,
		MaxKeys:     10000,
		LimiterType: "subject",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("Window must be positive, got %s", c.Window)
	}
	if c.MaxRequests <= 0 {
		return fmt.Errorf("MaxRequests must be positive, got %d", c.MaxRequests)
	}
	if c.MaxKeys < 0 {
		return fmt.Errorf("MaxKeys must be non-negative, got %d", c.MaxKeys)
	}
	return nil
}
