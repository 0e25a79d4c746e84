package notifier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows requests within burst", func(t *testing.T) {
		limiter := NewRateLimiter(2.0, 3)
		start := time.Now()
		for i := 0; i < 3; i++ {
			if err := limiter.Allow(context.Background()); err != nil {
				t.Fatalf("request %d: %v", i+1, err)
			}
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("burst requests were delayed by %v", elapsed)
		}
	})

	t.Run("blocks until the deadline when exhausted", func(t *testing.T) {
		limiter := NewRateLimiter(0.1, 1)
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := limiter.Allow(ctx); err == nil {
			t.Error("expected an error once the bucket is empty")
		}
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		limiter := NewRateLimiter(0.1, 1)
		_ = limiter.Allow(context.Background())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := limiter.Allow(ctx)
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}
		if !errors.Is(err, context.Canceled) && err.Error() == "" {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("refills over time", func(t *testing.T) {
		limiter := NewRateLimiter(20.0, 1)
		_ = limiter.Allow(context.Background())

		start := time.Now()
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatal(err)
		}
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("second request was not paced: %v", elapsed)
		}
	})
}

func TestRateLimiter_TryAllow(t *testing.T) {
	limiter := NewRateLimiter(0.01, 2)

	if !limiter.TryAllow() || !limiter.TryAllow() {
		t.Fatal("burst tokens should be available")
	}
	if limiter.TryAllow() {
		t.Error("TryAllow should fail once the burst is spent")
	}
}
