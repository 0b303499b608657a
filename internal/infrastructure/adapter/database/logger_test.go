package database

import (
	"context"
	"errors"
	"testing"
	"time"

	coremocks "github.com/amirhossein-jamali/health-logger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDatabaseLogger(t *testing.T, level string, elapsed time.Duration) (*DatabaseLogger, *coremocks.MockLogger) {
	t.Helper()

	mockLogger := coremocks.NewMockLogger(t)
	mockLogger.EXPECT().With(mock.Anything).Return(mockLogger)

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Since(mock.Anything).Return(elapsed).Maybe()

	return NewDatabaseLogger(mockLogger, mockTime, level, 100*time.Millisecond), mockLogger
}

func TestDatabaseLoggerTrace(t *testing.T) {
	sql := func() (string, int64) { return `SELECT * FROM "kv_entries" WHERE "key" = 'logs'`, 1 }
	ctx := context.Background()

	t.Run("Errors are logged at error level", func(t *testing.T) {
		l, mockLogger := newTestDatabaseLogger(t, "warn", time.Millisecond)
		mockLogger.EXPECT().Error("SQL Error", mock.MatchedBy(func(f map[string]any) bool {
			return f["error"] == "boom" && f["type"] == "SELECT" && f["table"] == "kv_entries"
		})).Once()

		l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	})

	t.Run("Slow queries are logged at warn level", func(t *testing.T) {
		l, mockLogger := newTestDatabaseLogger(t, "warn", time.Second)
		mockLogger.EXPECT().Warn("Slow SQL Query", mock.Anything).Once()

		l.Trace(ctx, time.Now(), sql, nil)
	})

	t.Run("Not found is not an error", func(t *testing.T) {
		l, _ := newTestDatabaseLogger(t, "warn", time.Millisecond)

		// No expectation: warn level drops the debug line
		l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	})

	t.Run("Silent logs nothing", func(t *testing.T) {
		l, _ := newTestDatabaseLogger(t, "silent", time.Second)
		l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	})

	t.Run("LogMode returns a copy", func(t *testing.T) {
		l, _ := newTestDatabaseLogger(t, "silent", 0)
		louder := l.LogMode(gormlogger.Info).(*DatabaseLogger)

		assert.Equal(t, gormlogger.Info, louder.logLevel)
		assert.Equal(t, gormlogger.Silent, l.logLevel)
	})
}

func TestExtractQueryParts(t *testing.T) {
	testCases := []struct {
		sql       string
		queryType string
		table     string
	}{
		{`SELECT * FROM "kv_entries" WHERE key = 1`, "SELECT", "kv_entries"},
		{`INSERT INTO "kv_entries" ("key","value") VALUES (1,2)`, "INSERT", "kv_entries"},
		{`UPDATE migration_versions SET version = 1`, "UPDATE", "migration_versions"},
		{`DELETE FROM kv_entries WHERE expires_at <= now()`, "DELETE", "kv_entries"},
		{`PRAGMA foreign_keys`, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.queryType, extractQueryType(tc.sql))
			assert.Equal(t, tc.table, extractTableName(tc.sql))
		})
	}
}
