package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// AlerterConfig tunes BreakerAlerter.
type AlerterConfig struct {
	// QueueSize bounds pending alerts; transitions beyond it are dropped.
	QueueSize int

	// SendTimeout bounds one delivery including retries.
	SendTimeout time.Duration

	// PerMinute and Burst cap alert volume while a breaker flaps.
	PerMinute float64
	Burst     int
}

// DefaultAlerterConfig returns a 16-slot queue, 30s delivery timeout and at
// most 6 alerts per minute with a burst of 3.
func DefaultAlerterConfig() AlerterConfig {
	return AlerterConfig{
		QueueSize:   16,
		SendTimeout: 30 * time.Second,
		PerMinute:   6,
		Burst:       3,
	}
}

// BreakerAlerter turns breaker transitions into alerts. OnStateChange runs
// under the breaker's lock, so it only enqueues; a background goroutine does
// the delivery. Only trips (to open) and recoveries (to closed) alert.
type BreakerAlerter struct {
	notifier Notifier
	cfg      AlerterConfig
	limiter  *RateLimiter
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	closed bool
	events chan BreakerEvent
	done   chan struct{}
}

// NewBreakerAlerter starts the delivery goroutine. Call Close to stop it.
func NewBreakerAlerter(n Notifier, cfg AlerterConfig, logger *slog.Logger) *BreakerAlerter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultAlerterConfig().QueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultAlerterConfig().SendTimeout
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = DefaultAlerterConfig().PerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultAlerterConfig().Burst
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &BreakerAlerter{
		notifier: n,
		cfg:      cfg,
		limiter:  NewRateLimiter(cfg.PerMinute/60, cfg.Burst),
		logger:   logger,
		now:      time.Now,
		events:   make(chan BreakerEvent, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

// OnStateChange implements circuitbreaker.StateObserver.
func (a *BreakerAlerter) OnStateChange(name string, from, to gobreaker.State) {
	if to != gobreaker.StateOpen && to != gobreaker.StateClosed {
		return
	}
	event := BreakerEvent{Name: name, From: from.String(), To: to.String(), At: a.now()}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.events <- event:
	default:
		a.logger.Warn("breaker alert dropped: queue full",
			slog.String("circuit", name),
			slog.String("to", event.To))
	}
}

func (a *BreakerAlerter) run() {
	defer close(a.done)
	for event := range a.events {
		if !a.limiter.TryAllow() {
			a.logger.Warn("breaker alert suppressed: alert rate exceeded",
				slog.String("circuit", event.Name),
				slog.String("to", event.To))
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SendTimeout)
		if err := a.notifier.NotifyBreakerStateChange(ctx, event); err != nil {
			a.logger.Error("breaker alert delivery failed",
				slog.String("circuit", event.Name),
				slog.String("to", event.To),
				slog.Any("error", err))
		}
		cancel()
	}
}

// Close stops accepting transitions and waits for queued alerts to drain
// or ctx to end.
func (a *BreakerAlerter) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
