package repository

import (
	"context"
	"errors"
	"time"

	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Writes that hit lock contention are retried with a doubling wait
const (
	maxWriteAttempts = 3
	busyRetryDelay   = 10 * time.Millisecond
)

// KVRepository implements persistence.KeyValueStore on a single GORM table
type KVRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      *database.MetricsCollector
	errorMapper  *database.ErrorMapper
}

var _ persistence.KeyValueStore = (*KVRepository)(nil)

// NewKVRepository creates a new KVRepository. A nil metrics collector gets a default one.
func NewKVRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger, metrics *database.MetricsCollector) *KVRepository {
	if metrics == nil {
		metrics = database.NewMetricsCollector(logger, timeProvider, 0)
	}
	return &KVRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
		errorMapper:  database.NewErrorMapper(),
	}
}

// handleDatabaseError logs the failure with its class and maps it to a domain error
func (r *KVRepository) handleDatabaseError(operation, key string, err error, attempts int) error {
	r.logger.Error("Key-value store operation failed", map[string]any{
		"operation":   operation,
		"key":         key,
		"error_class": string(classifyStoreError(err)),
		"attempts":    attempts,
		"error":       err.Error(),
	})
	return r.errorMapper.MapError(err, operation)
}

// retryBusy runs write until it succeeds, fails with an error that is not
// lock contention, the context ends or maxWriteAttempts is reached.
// It returns the number of attempts made.
func (r *KVRepository) retryBusy(ctx context.Context, operation string, write func() error) (int, error) {
	delay := busyRetryDelay
	for attempt := 1; ; attempt++ {
		err := write()
		if err == nil || attempt >= maxWriteAttempts || !classifyStoreError(err).Retryable() || ctx.Err() != nil {
			return attempt, err
		}

		r.logger.Debug("Key-value store busy, retrying write", map[string]any{
			"operation": operation,
			"attempt":   attempt,
			"delay":     delay.String(),
		})
		r.timeProvider.Sleep(delay)
		delay *= 2
	}
}

// Get returns the value stored under key, or nil when the key is absent or
// expired. An expired row is deleted on the way out.
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	_, err := r.metrics.MeasureQuery(ctx, "kv_get", func() (int64, error) {
		result := r.db.WithContext(ctx).Where(keyIs(key)).Limit(1).Find(&entry)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		return nil, r.handleDatabaseError("get", key, err, 1)
	}
	if entry.Key == "" {
		return nil, nil
	}

	now := r.now()
	if entry.IsExpired(now) {
		r.logger.Debug("Dropping expired key", map[string]any{
			"key":        key,
			"expired_at": entry.ExpiresAt.Format(time.RFC3339),
		})
		// Only delete the version we saw; a concurrent Set may have refreshed it
		err := r.db.WithContext(ctx).
			Where(keyIs(key)).
			Where("expires_at IS NOT NULL AND expires_at <= ?", now).
			Delete(&model.KVEntry{}).Error
		if err != nil {
			return nil, r.handleDatabaseError("expire", key, err, 1)
		}
		return nil, nil
	}

	return entry.Value, nil
}

// Set stores value under key, replacing any previous value. A positive ttl
// makes the key expire that long after now; zero means no expiry.
func (r *KVRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return r.errorMapper.MapError(errors.New("not null constraint: empty key"), "set")
	}

	now := r.now()
	entry := model.KVEntry{
		Key:   key,
		Value: value,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		entry.ExpiresAt = &expiresAt
	}

	attempts, err := r.retryBusy(ctx, "set", func() error {
		_, err := r.metrics.MeasureQuery(ctx, "kv_set", func() (int64, error) {
			result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
			}).Create(&entry)
			return result.RowsAffected, result.Error
		})
		return err
	})
	if err != nil {
		return r.handleDatabaseError("set", key, err, attempts)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *KVRepository) Remove(ctx context.Context, key string) error {
	attempts, err := r.retryBusy(ctx, "remove", func() error {
		_, err := r.metrics.MeasureQuery(ctx, "kv_remove", func() (int64, error) {
			result := r.db.WithContext(ctx).Where(keyIs(key)).Delete(&model.KVEntry{})
			return result.RowsAffected, result.Error
		})
		return err
	})
	if err != nil {
		return r.handleDatabaseError("remove", key, err, attempts)
	}
	return nil
}

// PurgeExpired deletes every expired row and returns how many were removed
func (r *KVRepository) PurgeExpired(ctx context.Context) (int64, error) {
	now := r.now()
	metrics, err := r.metrics.MeasureQuery(ctx, "kv_purge", func() (int64, error) {
		result := r.db.WithContext(ctx).
			Where("expires_at IS NOT NULL AND expires_at <= ?", now).
			Delete(&model.KVEntry{})
		return result.RowsAffected, result.Error
	})
	if err != nil {
		return 0, r.handleDatabaseError("purge", "", err, 1)
	}

	if metrics.RowsAffected > 0 {
		r.logger.Info("Purged expired keys", map[string]any{
			"count": metrics.RowsAffected,
		})
	}
	return metrics.RowsAffected, nil
}

// keyIs matches the key column, quoted for the active dialect
func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (r *KVRepository) now() time.Time {
	return r.timeProvider.Now().UTC()
}
