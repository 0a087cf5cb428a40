package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvvinfo/btlz-wb-test/internal/core/errs"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:     attempts,
		InitialDelay:    time.Millisecond,
		MaxDelay:        8 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
}

func TestBackoff(t *testing.T) {
	cfg := Config{
		InitialDelay:    5 * time.Minute,
		MaxDelay:        30 * time.Minute,
		BackoffMultiple: 2.0,
	}

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{0, 5 * time.Minute},
		{1, 10 * time.Minute},
		{2, 20 * time.Minute},
		{3, 30 * time.Minute}, // capped
		{6, 30 * time.Minute},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, cfg); got != tt.expect {
			t.Errorf("Backoff(%d) = %s, want %s", tt.attempt, got, tt.expect)
		}
	}
}

func TestDoSucceedsMidway(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(5), "op", errs.Retryable,
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errs.E(errs.KindNetwork, "op", errors.New("unreachable"))
			}
			return "done", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "done" {
		t.Errorf("result = %q, want %q", result, "done")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(3), "fetch tariffs", errs.Retryable,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errs.FromStatus("op", 503)
		})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !strings.Contains(err.Error(), "fetch tariffs failed after 3 attempts") {
		t.Errorf("error %q missing label and attempt count", err)
	}
	if errs.KindOf(err) != errs.KindServer {
		t.Errorf("exhaustion should wrap the last classified error, got kind %v", errs.KindOf(err))
	}
}

// Non-retryable errors fail fast: one attempt, no backoff waits, and the
// classified error propagates unwrapped.
func TestDoFailsFastOnNonRetryable(t *testing.T) {
	calls := 0
	authErr := errs.FromStatus("op", 401)

	cfg := Config{
		MaxAttempts:     5,
		InitialDelay:    time.Hour, // would hang the test if a wait happened
		MaxDelay:        time.Hour,
		BackoffMultiple: 2.0,
	}

	start := time.Now()
	_, err := Do(context.Background(), cfg, "op", errs.Retryable,
		func(ctx context.Context) (struct{}, error) {
			calls++
			return struct{}{}, authErr
		})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, authErr) {
		t.Errorf("expected the auth error to propagate unwrapped, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fail-fast took %s, should not consume backoff waits", elapsed)
	}
}

func TestDoContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := Config{
		MaxAttempts:     3,
		InitialDelay:    time.Hour,
		MaxDelay:        time.Hour,
		BackoffMultiple: 2.0,
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, cfg, "op", errs.Retryable,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, errs.E(errs.KindNetwork, "op", errors.New("down"))
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", DefaultConfig, true},
		{"single attempt", Config{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Second, BackoffMultiple: 1}, true},
		{"zero attempts", Config{MaxAttempts: 0, InitialDelay: time.Second, MaxDelay: time.Second, BackoffMultiple: 1}, false},
		{"zero delay", Config{MaxAttempts: 1, InitialDelay: 0, MaxDelay: time.Second, BackoffMultiple: 1}, false},
		{"max below initial", Config{MaxAttempts: 1, InitialDelay: time.Minute, MaxDelay: time.Second, BackoffMultiple: 1}, false},
		{"multiple below one", Config{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Second, BackoffMultiple: 0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
