package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/logger"
	"github.com/stretchr/testify/assert"
)

func TestRetryOnTransientError(t *testing.T) {
	log := logger.NewNoopLogger()
	cfg := RetryConfig{MaxAttempts: 3, RetryInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

	t.Run("Succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}, log)

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Stops on a permanent error", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func() error {
			calls++
			return errors.New("syntax error")
		}, log)

		assert.EqualError(t, err, "syntax error")
		assert.Equal(t, 1, calls)
	})

	t.Run("Gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func() error {
			calls++
			return errors.New("database is locked")
		}, log)

		assert.EqualError(t, err, "database is locked")
		assert.Equal(t, 3, calls)
	})

	t.Run("Zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_ = RetryOnTransientError(context.Background(), RetryConfig{}, func() error {
			calls++
			return nil
		}, log)
		assert.Equal(t, 1, calls)
	})

	t.Run("Cancelled context stops the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := RetryOnTransientError(ctx, RetryConfig{MaxAttempts: 5, RetryInterval: time.Hour}, func() error {
			return errors.New("timeout")
		}, log)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{RetryInterval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, calculateBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, calculateBackoff(2, cfg))
}
