package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTransient marks network, timeout and 5xx failures that may succeed on retry.
	ErrTransient = errors.New("transient dependency error")

	// ErrConfiguration marks missing credentials, URLs or collections.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks a malformed or incomplete backend payload.
	ErrValidation = errors.New("validation error")

	// ErrCircuitOpen is returned when a circuit breaker refuses a call.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrUnknownSource indicates a source type with no registered constructor.
	ErrUnknownSource = errors.New("unknown source")
)

// Transient wraps err as a transient dependency error.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Configuration wraps err as a configuration error.
func Configuration(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

// IsTransient reports whether err should be retried.
// Deadline expirations count as transient; explicit cancellation does not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded)
}
