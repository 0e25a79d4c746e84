package config

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule accepts a standard 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("invalid cron schedule: cannot be empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone accepts an IANA zone name that time.LoadLocation can resolve.
// Binaries should import time/tzdata so this does not depend on the host.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return errors.New("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return nil
}

func inRange[T cmp.Ordered](kind string, v, lo, hi T) error {
	if lo > hi {
		return fmt.Errorf("invalid %s range: min %v > max %v", kind, lo, hi)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s %v out of range [%v, %v]", kind, v, lo, hi)
	}
	return nil
}

// ValidateDuration checks lo <= d <= hi.
func ValidateDuration(d, lo, hi time.Duration) error {
	return inRange("duration", d, lo, hi)
}

// ValidateIntRange checks lo <= v <= hi.
func ValidateIntRange(v, lo, hi int) error {
	return inRange("value", v, lo, hi)
}

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration %v must be positive", d)
	}
	return nil
}

// ValidatePositiveInt rejects zero and negative values.
func ValidatePositiveInt(v int) error {
	if v <= 0 {
		return fmt.Errorf("value %d must be positive", v)
	}
	return nil
}
