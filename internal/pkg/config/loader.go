// Package config loads single settings from the environment with a fail-open
// policy: a value that does not parse or validate is replaced by its default
// and reported as a fallback, so a typo in one variable never stops the
// worker or the connection pool from starting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one setting.
type Result[T any] struct {
	Value T
	// FallbackApplied is true when the variable was set but rejected.
	FallbackApplied bool
	// Warning explains the rejection. Empty unless FallbackApplied.
	Warning string
}

// Load reads key, parses it and validates the parsed value. An unset or blank
// variable yields def without a warning. validate may be nil.
func Load[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(key, raw, def, err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return fallback(key, raw, def, err)
		}
	}
	return Result[T]{Value: v}
}

func fallback[T any](key, raw string, def T, err error) Result[T] {
	return Result[T]{
		Value:           def,
		FallbackApplied: true,
		Warning:         fmt.Sprintf("%s=%q rejected (%v), using default %v", key, raw, err, def),
	}
}

// String loads a string setting.
func String(key, def string, validate func(string) error) Result[string] {
	return Load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// Int loads a base-10 integer setting.
func Int(key string, def int, validate func(int) error) Result[int] {
	return Load(key, def, strconv.Atoi, validate)
}

// Duration loads a setting written in time.ParseDuration syntax ("90s", "720h").
func Duration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(key, def, time.ParseDuration, validate)
}
