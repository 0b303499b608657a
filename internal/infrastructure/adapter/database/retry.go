package database

import (
	"context"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
)

// RetryConfig holds configuration for retry operations
type RetryConfig struct {
	MaxAttempts   int
	RetryInterval time.Duration
	MaxInterval   time.Duration
}

// RetryOnTransientError runs operation until it succeeds, fails with a
// non-transient error, or MaxAttempts is reached. The wait doubles after
// each attempt up to MaxInterval.
func RetryOnTransientError(
	ctx context.Context,
	config RetryConfig,
	operation func() error,
	logger coreport.Logger,
) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if !isTransientError(err) || attempt == attempts-1 {
			break
		}

		backoff := calculateBackoff(attempt, config)
		logger.Warn("Transient database error, retrying", map[string]any{
			"attempt":      attempt + 1,
			"max_attempts": attempts,
			"error":        err.Error(),
			"retry_after":  backoff.String(),
		})

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return err
}

// calculateBackoff computes RetryInterval * 2^attempt capped at MaxInterval
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := config.RetryInterval * (1 << uint(attempt))
	if config.MaxInterval > 0 && backoff > config.MaxInterval {
		backoff = config.MaxInterval
	}
	return backoff
}

// isTransientError checks if an error is transient and can be retried
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "too many connections") ||
		strings.Contains(errMsg, "server closed") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "database is locked") ||
		strings.Contains(errMsg, "the database system is starting up") ||
		strings.Contains(errMsg, "eof")
}
