package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   10 * time.Millisecond,
		MaxDelay:       100 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return &statusError{code: 503}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := &statusError{code: 500}

	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return testErr
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	var se *statusError
	if !errors.As(err, &se) || se != testErr {
		t.Errorf("expected wrapped error to contain original error, got %v", err)
	}
}

func TestWithBackoff_DelaySchedule(t *testing.T) {
	cfg := Config{
		MaxAttempts:  3,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	var calls []time.Time
	var retried []int
	cfg.OnRetry = func(attempt int, err error) { retried = append(retried, attempt) }

	_ = WithBackoff(context.Background(), cfg, func() error {
		calls = append(calls, time.Now())
		return &statusError{code: 502}
	})

	if len(calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(calls))
	}
	if first := calls[1].Sub(calls[0]); first < 20*time.Millisecond {
		t.Errorf("first wait = %v, want >= 20ms", first)
	}
	if second := calls[2].Sub(calls[1]); second < 40*time.Millisecond {
		t.Errorf("second wait = %v, want >= 40ms", second)
	}
	if fmt.Sprint(retried) != "[1 2]" {
		t.Errorf("OnRetry attempts = %v, want [1 2] (no wait after the last attempt)", retried)
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	testErr := &statusError{code: 404}

	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return testErr
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
	if err != testErr {
		t.Errorf("expected the same error back, got %v", err)
	}
}

func TestWithBackoff_ContextCanceledDuringWait(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	start := time.Now()
	err := WithBackoff(ctx, cfg, func() error {
		attempts++
		return &statusError{code: 500}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancellation did not interrupt the wait (took %v)", elapsed)
	}
}

func TestWithBackoff_ContextDoneStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	testErr := &statusError{code: 500}
	err := WithBackoff(ctx, fastConfig(), func() error {
		attempts++
		cancel()
		return testErr
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if err != testErr {
		t.Errorf("expected the attempt's error, got %v", err)
	}
}

// statusError mimics a classified bureau response.
type statusError struct{ code int }

func (e *statusError) Error() string   { return fmt.Sprintf("bureau answered %d", e.code) }
func (e *statusError) Retryable() bool { return e.code >= 500 || e.code == 429 }

type selfClassified struct{ transient bool }

func (e selfClassified) Error() string   { return "classified" }
func (e selfClassified) Retryable() bool { return e.transient }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"network unreachable", syscall.ENETUNREACH, true},
		{"wrapped refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"dns", &net.DNSError{Err: "no such host", Name: "bureau.invalid"}, true},
		{"self classified transient", selfClassified{transient: true}, true},
		{"self classified permanent", fmt.Errorf("wrap: %w", selfClassified{}), false},
		{"generic", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestUpstreamConfig(t *testing.T) {
	cfg := UpstreamConfig()
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 2*time.Second {
		t.Errorf("InitialDelay = %v, want 2s", cfg.InitialDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2", cfg.Multiplier)
	}
	if cfg.JitterFraction != 0 {
		t.Errorf("JitterFraction = %v, want 0", cfg.JitterFraction)
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := addJitter(base, 0.1)
		if got < base || got > base+10*time.Millisecond {
			t.Fatalf("addJitter() = %v, out of [%v, %v]", got, base, base+10*time.Millisecond)
		}
	}
	if got := addJitter(base, 0); got != base {
		t.Errorf("addJitter(0) = %v, want %v", got, base)
	}
}
