// Package config provides lenient environment lookups shared by the gateway
// configuration layers. An invalid value never fails startup: it is logged
// and the caller's default is kept.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func warnInvalid(key, value string, def any) {
	slog.Warn("invalid value for environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.Any("default", def))
}

// GetEnvString returns the variable or def when it is unset or blank.
func GetEnvString(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

// GetEnvInt parses a base-10 integer.
func GetEnvInt(key string, def int) int {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

// GetEnvBool accepts the strconv.ParseBool spellings ("1", "true", "F", ...).
func GetEnvBool(key string, def bool) bool {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

// GetEnvDuration parses time.ParseDuration syntax ("1m", "30s").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

// GetEnvMillis reads a whole, non-negative number of milliseconds, the unit
// the bureau settings have always been configured in.
//
//	SENTINEL_API_TIMEOUT=2500 -> 2.5s
func GetEnvMillis(key string, def time.Duration) time.Duration {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		warnInvalid(key, raw, def)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// GetEnvStringList splits a comma-separated list, trimming entries and
// dropping empty ones. A list with no entries yields def.
//
//	TRUSTED_PROXIES="10.0.0.0/8, 172.16.0.0/12" -> ["10.0.0.0/8" "172.16.0.0/12"]
func GetEnvStringList(key string, def []string) []string {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
