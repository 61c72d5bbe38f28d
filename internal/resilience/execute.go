package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbz/searchmesh/internal/domain"
)

// FallbackFunc produces a substitute result. cause is ErrCircuitOpen or the operation error.
type FallbackFunc[T any] func(ctx context.Context, cause error) (T, error)

// Execute runs op through the breaker.
//
// If the breaker refuses the call, fallback runs without touching the breaker, or
// ErrCircuitOpen is returned when there is no fallback. Otherwise success is recorded,
// and a failure is recorded before delegating to fallback or returning the error.
// Caller cancellation is not held against the dependency, and a panicking op
// gives its half-open trial slot back before the panic continues.
func Execute[T any](
	ctx context.Context,
	cb *CircuitBreaker,
	op func(context.Context) (T, error),
	fallback FallbackFunc[T],
) (T, error) {
	if !cb.acquire() {
		openErr := fmt.Errorf("%w: %s", domain.ErrCircuitOpen, cb.Name())
		if fallback != nil {
			return fallback(ctx, openErr)
		}
		var zero T
		return zero, openErr
	}

	settled := false
	defer func() {
		if !settled {
			cb.release()
		}
	}()

	result, err := op(ctx)
	settled = true
	if err == nil {
		cb.RecordSuccess()
		return result, nil
	}

	if errors.Is(err, context.Canceled) {
		cb.release()
	} else {
		cb.RecordFailure()
	}

	if fallback != nil {
		return fallback(ctx, err)
	}
	return result, err
}

// Do runs an operation that only returns an error through the breaker.
func Do(ctx context.Context, cb *CircuitBreaker, op func(context.Context) error) error {
	_, err := Execute(ctx, cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, nil)
	return err
}
