package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (not including the initial attempt).
	MaxRetries int `env:"RETRY_MAX_RETRIES" envDefault:"2"`

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" envDefault:"200ms"`

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration `env:"RETRY_MAX_DELAY" envDefault:"2s"`

	// Multiplier is the factor by which delay increases after each retry.
	Multiplier float64 `env:"RETRY_MULTIPLIER" envDefault:"2"`
}

// DefaultRetryConfig returns the defaults used when no configuration is supplied.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
}

// Retry executes fn, retrying transient failures with capped exponential backoff.
// Non-transient errors are returned immediately.
func Retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	_, err := RetryWithResult(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryWithResult is Retry for functions that return a value.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := cfg.InitialDelay
	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !domain.IsTransient(err) || attempt >= cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	if cfg.MaxRetries > 0 && domain.IsTransient(lastErr) {
		return zero, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
	}
	return zero, lastErr
}
