package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Config defines retry behavior.
type Config struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// DefaultConfig matches the source fetch policy.
var DefaultConfig = Config{
	MaxAttempts:     3,
	InitialDelay:    5 * time.Minute,
	MaxDelay:        30 * time.Minute,
	BackoffMultiple: 2.0,
}

// Validate rejects configs the executor cannot honor.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.InitialDelay <= 0 {
		return fmt.Errorf("initial_delay must be positive, got %s", c.InitialDelay)
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay %s is below initial_delay %s", c.MaxDelay, c.InitialDelay)
	}
	if c.BackoffMultiple < 1 {
		return fmt.Errorf("backoff_multiple must be >= 1, got %g", c.BackoffMultiple)
	}
	return nil
}

// Predicate decides whether an error is worth another attempt.
type Predicate func(error) bool

// Do runs op up to cfg.MaxAttempts times with exponential backoff between
// attempts. A non-retryable error fails fast: it propagates unwrapped without
// consuming the remaining attempt budget or its waits. On exhaustion the last
// error is returned annotated with the label and attempt count.
func Do[T any](
	ctx context.Context,
	cfg Config,
	label string,
	retryable Predicate,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := Backoff(attempt, cfg)
		slog.Warn("operation failed, retrying",
			"op", label,
			"attempt", attempt+1,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", label, cfg.MaxAttempts, lastErr)
}

// Backoff returns the wait before attempt+2, capped at MaxDelay:
// min(InitialDelay * BackoffMultiple^attempt, MaxDelay).
func Backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiple, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}
