package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/resilience"
)

func fastRetry(maxRetries int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestRetry_TransientSucceedsEventually(t *testing.T) {
	attempts := 0

	got, err := resilience.RetryWithResult(context.Background(), fastRetry(3), func(context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, domain.Transient(errors.New("503"))
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, got)
	require.Equal(t, 3, attempts)
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0

	err := resilience.Retry(context.Background(), fastRetry(2), func(context.Context) error {
		attempts++
		return domain.Transient(errors.New("timeout"))
	})

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrTransient)
	require.Contains(t, err.Error(), "failed after 2 retries")
	require.Equal(t, 3, attempts)
}

func TestRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	attempts := 0
	permanent := domain.Configuration(errors.New("missing api key"))

	err := resilience.Retry(context.Background(), fastRetry(5), func(context.Context) error {
		attempts++
		return permanent
	})

	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.Equal(t, 1, attempts)
}

func TestRetry_RetriesDeadlineExceeded(t *testing.T) {
	attempts := 0

	err := resilience.Retry(context.Background(), fastRetry(1), func(context.Context) error {
		attempts++
		return context.DeadlineExceeded
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 2, attempts)
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := resilience.Retry(ctx, fastRetry(3), func(context.Context) error {
		attempts++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, attempts)
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := resilience.DefaultRetryConfig()

	require.Equal(t, 2, cfg.MaxRetries)
	require.Equal(t, 200*time.Millisecond, cfg.InitialDelay)
	require.Equal(t, 2*time.Second, cfg.MaxDelay)
	require.InDelta(t, 2.0, cfg.Multiplier, 0.0001)
}
