package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SubjectLimiter applies a sliding-window limit per subject.
//
// A request is allowed when fewer than MaxRequests requests from the same
// subject were recorded in the last Window; an allowed request is recorded,
// a denied one is not. The limiter never returns an error: if the store
// fails, the request is denied and the failure is logged.
type SubjectLimiter struct {
	store   Store
	config  Config
	clock   Clock
	metrics Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	lastNow time.Time
}

// Option configures a SubjectLimiter.
type Option func(*SubjectLimiter)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(l *SubjectLimiter) { l.clock = clock }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(l *SubjectLimiter) { l.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *SubjectLimiter) { l.logger = logger }
}

// NewSubjectLimiter creates a limiter over store. Zero config fields take
// their DefaultConfig values.
func NewSubjectLimiter(store Store, config Config, opts ...Option) *SubjectLimiter {
	def := DefaultConfig()
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.MaxRequests <= 0 {
		config.MaxRequests = def.MaxRequests
	}
	if config.LimiterType == "" {
		config.LimiterType = def.LimiterType
	}

	l := &SubjectLimiter{
		store:   store,
		config:  config,
		clock:   &SystemClock{},
		metrics: NewNoOpMetrics(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether a request for subject may proceed, recording it if so.
func (l *SubjectLimiter) Allow(ctx context.Context, subject string) bool {
	return l.Check(ctx, subject).Allowed
}

// Check is Allow with the full decision, used to populate rate limit headers.
func (l *SubjectLimiter) Check(ctx context.Context, subject string) *RateLimitDecision {
	start := time.Now()
	defer func() {
		l.metrics.RecordCheckDuration(l.config.LimiterType, time.Since(start))
	}()

	now := l.now()
	cutoff := now.Add(-l.config.Window)

	allowed, count, oldest, err := l.store.CheckAndAdd(ctx, subject, now, cutoff, l.config.MaxRequests)
	if err != nil {
		l.logger.Error("rate limit store failure, denying request",
			slog.String("limiter_type", l.config.LimiterType),
			slog.String("subject", subject),
			slog.Any("error", err))
		l.metrics.RecordDenied(l.config.LimiterType)
		return newDeniedDecision(subject, l.config.LimiterType, l.config.MaxRequests, now.Add(l.config.Window), now)
	}

	if keys, err := l.store.KeyCount(ctx); err == nil {
		l.metrics.SetActiveKeys(l.config.LimiterType, keys)
	}

	resetAt := now.Add(l.config.Window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(l.config.Window)
	}

	if !allowed {
		l.metrics.RecordDenied(l.config.LimiterType)
		l.logger.Warn("rate limit exceeded",
			slog.String("limiter_type", l.config.LimiterType),
			slog.String("subject", subject),
			slog.Int("count", count),
			slog.Int("limit", l.config.MaxRequests))
		return newDeniedDecision(subject, l.config.LimiterType, l.config.MaxRequests, resetAt, now)
	}

	l.metrics.RecordAllowed(l.config.LimiterType)
	return newAllowedDecision(subject, l.config.LimiterType, l.config.MaxRequests, l.config.MaxRequests-count, resetAt)
}

// Config returns the effective configuration.
func (l *SubjectLimiter) Config() Config {
	return l.config
}

// now returns the clock time, never going backwards. A clock that steps back
// would otherwise let already-recorded timestamps look like future requests.
func (l *SubjectLimiter) now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Before(l.lastNow) {
		l.logger.Warn("clock skew detected, using last valid timestamp",
			slog.Time("now", now),
			slog.Time("last_seen", l.lastNow),
			slog.Duration("skew", l.lastNow.Sub(now)))
		return l.lastNow
	}
	l.lastNow = now
	return now
}
