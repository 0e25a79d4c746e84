// Package cache provides a thread-safe in-process key/value store with
// per-entry time-to-live, bounded capacity and hit/miss statistics.
//
// The store is an optimization layer: no operation returns an error or
// panics on a missing or expired key. Values are opaque byte slices
// (typically JSON documents) and are copied on the way in and out, so
// callers can never mutate a cached value in place.
package cache

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// HealthCheckKey is the key used by Ping for its write/read round-trip.
const HealthCheckKey = "health_check_test"

// Clock provides the current time. Tests inject a fake clock to move
// entries past their expiry without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time { return time.Now() }

// Eviction reasons reported to the Observer.
const (
	ReasonExpired  = "expired"
	ReasonCapacity = "capacity"
)

// Observer receives cache events. Implementations must be fast and must not
// call back into the Store.
type Observer interface {
	OnHit(key string)
	OnMiss(key string)
	OnEviction(key string, reason string)
}

// Config holds configuration for Store.
type Config struct {
	// DefaultTTL applies when Set is called with a non-positive ttl.
	// Default: 1h
	DefaultTTL time.Duration

	// MaxKeys bounds the number of live entries.
	// Default: 1000
	MaxKeys int

	Clock    Clock
	Observer Observer
	Logger   *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: time.Hour,
		MaxKeys:    1000,
		Clock:      SystemClock{},
	}
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Keys    int     `json:"keys"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Store is the in-memory TTL cache.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	hits    uint64
	misses  uint64

	defaultTTL time.Duration
	maxKeys    int
	clock      Clock
	observer   Observer
	logger     *slog.Logger
}

// New creates a Store with the given configuration, filling unset fields
// from DefaultConfig.
func New(cfg Config) *Store {
	def := DefaultConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = def.MaxKeys
	}
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{
		entries:    make(map[string]*entry),
		defaultTTL: cfg.DefaultTTL,
		maxKeys:    cfg.MaxKeys,
		clock:      cfg.Clock,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
}

// Set stores value under key for ttl (DefaultTTL when ttl <= 0).
// It returns false only for an empty key.
//
// When a new key would exceed MaxKeys, expired entries are purged first and
// then the entry closest to expiry is evicted.
func (s *Store) Set(key string, value []byte, ttl time.Duration) bool {
	if key == "" {
		s.logger.Warn("cache set rejected", slog.String("reason", "empty key"))
		return false
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxKeys {
		s.purgeExpiredLocked(now)
		for len(s.entries) >= s.maxKeys {
			s.evictEarliestLocked()
		}
	}

	s.entries[key] = &entry{
		value:     clone(value),
		expiresAt: now.Add(ttl),
	}
	s.logger.Debug("cache set", slog.String("key", key), slog.Duration("ttl", ttl))
	return true
}

// Get returns a copy of the value stored under key. Absent and expired keys
// count as a miss; expired entries are removed on access.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if ok && e.expired(s.clock.Now()) {
		s.removeLocked(key, ReasonExpired)
		ok = false
	}
	if !ok {
		s.misses++
		if s.observer != nil {
			s.observer.OnMiss(key)
		}
		s.logger.Debug("cache miss", slog.String("key", key))
		return nil, false
	}

	s.hits++
	if s.observer != nil {
		s.observer.OnHit(key)
	}
	s.logger.Debug("cache hit", slog.String("key", key))
	return clone(e.value), true
}

// Has reports whether key holds a live entry. It does not touch the hit/miss counters.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return ok && !e.expired(s.clock.Now())
}

// Delete removes key and reports whether a live entry was removed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	s.logger.Debug("cache delete", slog.String("key", key))
	return !e.expired(s.clock.Now())
}

// DeleteMatching removes every key containing substr and returns how many were removed.
func (s *Store) DeleteMatching(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.Contains(key, substr) {
			delete(s.entries, key)
			removed++
		}
	}
	s.logger.Debug("cache delete matching", slog.String("pattern", substr), slog.Int("removed", removed))
	return removed
}

// Clear removes every entry and resets the statistics.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.hits = 0
	s.misses = 0
	s.logger.Info("cache flushed")
}

// Stats returns the live key count and hit/miss counters.
// HitRate is hits/(hits+misses), or 0 when nothing has been looked up.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	live := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			live++
		}
	}

	stats := Stats{Keys: live, Hits: s.hits, Misses: s.misses}
	if total := s.hits + s.misses; total > 0 {
		stats.HitRate = float64(s.hits) / float64(total)
	}
	return stats
}

// Keys returns the live keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	keys := make([]string, 0, len(s.entries))
	for key, e := range s.entries {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// TTL returns the remaining lifetime of key.
func (s *Store) TTL(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	remaining := e.expiresAt.Sub(s.clock.Now())
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// SetTTL resets the lifetime of a live entry, measured from now.
func (s *Store) SetTTL(key string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		return false
	}
	e.expiresAt = now.Add(ttl)
	return true
}

// ClearExpired removes all expired entries and returns how many were removed.
func (s *Store) ClearExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purgeExpiredLocked(s.clock.Now())
}

// Ping performs a write/read/delete round-trip and reports whether the value
// came back intact.
func (s *Store) Ping() bool {
	probe := []byte(s.clock.Now().UTC().Format(time.RFC3339Nano))
	if !s.Set(HealthCheckKey, probe, 5*time.Second) {
		return false
	}
	defer s.Delete(HealthCheckKey)

	s.mu.Lock()
	e, ok := s.entries[HealthCheckKey]
	s.mu.Unlock()
	return ok && string(e.value) == string(probe)
}

func (s *Store) purgeExpiredLocked(now time.Time) int {
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			s.removeLocked(key, ReasonExpired)
			removed++
		}
	}
	return removed
}

// evictEarliestLocked drops the entry with the earliest expiry.
// A linear scan is acceptable at the configured capacity.
func (s *Store) evictEarliestLocked() {
	var (
		victim   string
		earliest time.Time
		found    bool
	)
	for key, e := range s.entries {
		if !found || e.expiresAt.Before(earliest) {
			victim, earliest, found = key, e.expiresAt, true
		}
	}
	if found {
		s.removeLocked(victim, ReasonCapacity)
	}
}

func (s *Store) removeLocked(key, reason string) {
	delete(s.entries, key)
	if s.observer != nil {
		s.observer.OnEviction(key, reason)
	}
	s.logger.Debug("cache evict", slog.String("key", key), slog.String("reason", reason))
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
