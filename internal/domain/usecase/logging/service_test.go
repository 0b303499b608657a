package logging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/health-logger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/health-logger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/health-logger/mocks/port/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func storageOnly(cfg entity.LoggerConfig) entity.LoggerConfig {
	cfg.EnableConsole = false
	cfg.EnableStorage = true
	return cfg
}

func TestNewService(t *testing.T) {
	t.Run("Zero config takes defaults", func(t *testing.T) {
		s := NewService(entity.LoggerConfig{EnableConsole: true, EnableStorage: true}, nil, nil, nil, nil)

		cfg := s.GetConfig()
		assert.Equal(t, entity.LevelInfo, cfg.Level)
		assert.Equal(t, 7*24*time.Hour, cfg.StorageTTL)
		assert.Equal(t, 1000, cfg.MaxStorageEntries)
	})

	t.Run("Nil collaborators are tolerated", func(t *testing.T) {
		s := NewService(entity.DefaultLoggerConfig(), nil, nil, nil, nil)

		assert.NotPanics(t, func() { s.Info("nothing to write to") })
		logs, err := s.GetLogs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, logs)
		assert.NoError(t, s.ClearLogs(context.Background()))
	})
}

func TestLevelFiltering(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1_000))
	store := newMemoryKV()
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.Level = entity.LevelWarn
	s := NewService(cfg, store, nil, clock, nil)

	s.Debug("debug message")
	s.Info("info message")
	s.Warn("warn message")
	s.Error("error message")

	assert.Equal(t, []string{"warn message", "error message"}, messages(t, s))
	assert.Equal(t, 2, store.setCount())
}

func TestFilteredCallDoesNoWork(t *testing.T) {
	// No Now expectation: reading the clock would fail the test
	clock := coremocks.NewMockTimeProvider(t)
	store := persistencemocks.NewMockKeyValueStore(t)
	console := coremocks.NewMockConsoleSink(t)

	handled := 0
	cfg := entity.DefaultLoggerConfig()
	cfg.Level = entity.LevelError
	cfg.CustomHandler = func(entity.LogEntry) { handled++ }
	s := NewService(cfg, store, console, clock, nil)

	s.Debug("dropped")
	s.Info("dropped")
	s.Warn("dropped", map[string]any{"k": "v"})
	s.Log("verbose", "dropped")

	assert.Zero(t, handled)
}

func TestCapacityEviction(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(10_000))
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.MaxStorageEntries = 3
	s := NewService(cfg, newMemoryKV(), nil, clock, nil)

	for i := 1; i <= 5; i++ {
		clock.SetMillis(int64(10_000 + i))
		s.Info(fmt.Sprintf("m%d", i))
	}

	assert.Equal(t, []string{"m3", "m4", "m5"}, messages(t, s))
}

func TestCapacityEvictionKeepsLatestTwo(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(0))
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.MaxStorageEntries = 2
	s := NewService(cfg, newMemoryKV(), nil, clock, nil)

	s.Info("Message 1")
	s.Info("Message 2")
	s.Info("Message 3")

	assert.Equal(t, []string{"Message 2", "Message 3"}, messages(t, s))
}

func TestAgeEviction(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(0))
	store := newMemoryKV()
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.StorageTTL = 1000 * time.Millisecond
	s := NewService(cfg, store, nil, clock, nil)

	s.Info("old")
	clock.SetMillis(1500)
	s.Info("new")

	assert.Equal(t, []string{"new"}, messages(t, s))

	t.Run("TTL is passed as the expiry hint", func(t *testing.T) {
		require.NotEmpty(t, store.ttls)
		assert.Equal(t, time.Second, store.ttls[len(store.ttls)-1])
	})
}

func TestAgeEvictionBoundary(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(0))
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.StorageTTL = time.Second
	s := NewService(cfg, newMemoryKV(), nil, clock, nil)

	s.Info("at zero")
	clock.SetMillis(999)
	s.Info("just inside")
	assert.Equal(t, []string{"at zero", "just inside"}, messages(t, s))

	clock.SetMillis(1000)
	s.Info("exactly ttl later")
	assert.Equal(t, []string{"just inside", "exactly ttl later"}, messages(t, s))
}

func TestExpiryIsLazy(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(0))
	store := newMemoryKV()
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.StorageTTL = time.Second
	s := NewService(cfg, store, nil, clock, nil)

	s.Info("stale soon")
	clock.SetMillis(5000)

	// Reading never evicts
	assert.Equal(t, []string{"stale soon"}, messages(t, s))
	assert.Equal(t, 1, store.setCount())
}

func TestGetLogsDoesNotWrite(t *testing.T) {
	store := persistencemocks.NewMockKeyValueStore(t)
	stored, err := json.Marshal([]entity.LogEntry{
		{Timestamp: 1, Level: entity.LevelInfo, Message: "a"},
		{Timestamp: 2, Level: entity.LevelError, Message: "b"},
	})
	require.NoError(t, err)
	store.EXPECT().Get(mock.Anything, StorageKey).Return(stored, nil).Once()

	s := NewService(entity.DefaultLoggerConfig(), store, nil, nil, nil)

	logs, err := s.GetLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "a", logs[0].Message)
	assert.Equal(t, entity.LevelError, logs[1].Level)
}

func TestClearLogs(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(100))
	s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)

	s.Info("one")
	s.Info("two")
	require.Len(t, messages(t, s), 2)

	require.NoError(t, s.ClearLogs(context.Background()))
	assert.Empty(t, messages(t, s))

	// A second clear is equivalent to one
	require.NoError(t, s.ClearLogs(context.Background()))
	assert.Empty(t, messages(t, s))

	s.Info("after clear")
	assert.Equal(t, []string{"after clear"}, messages(t, s))
}

func TestClearLogsFailure(t *testing.T) {
	store := persistencemocks.NewMockKeyValueStore(t)
	store.EXPECT().Remove(mock.Anything, StorageKey).Return(errs.ErrDatabaseConnection).Once()
	s := NewService(entity.DefaultLoggerConfig(), store, nil, nil, nil)

	err := s.ClearLogs(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrLogStoreUnavailable)
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
}

func TestGetLogsFailures(t *testing.T) {
	t.Run("Read error", func(t *testing.T) {
		store := persistencemocks.NewMockKeyValueStore(t)
		store.EXPECT().Get(mock.Anything, StorageKey).Return(nil, errs.ErrDatabaseConnection).Once()
		s := NewService(entity.DefaultLoggerConfig(), store, nil, nil, nil)

		logs, err := s.GetLogs(context.Background())
		assert.Nil(t, logs)

		var storeErr *errs.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "get", storeErr.Op)
		assert.Equal(t, StorageKey, storeErr.Key)
	})

	t.Run("Corrupt payload", func(t *testing.T) {
		store := persistencemocks.NewMockKeyValueStore(t)
		store.EXPECT().Get(mock.Anything, StorageKey).Return([]byte("{not json"), nil).Once()
		s := NewService(entity.DefaultLoggerConfig(), store, nil, nil, nil)

		_, err := s.GetLogs(context.Background())
		assert.ErrorIs(t, err, errs.ErrCorruptLogStore)
		assert.ErrorIs(t, err, errs.ErrLogStoreUnavailable)
	})

	t.Run("Absent key", func(t *testing.T) {
		store := persistencemocks.NewMockKeyValueStore(t)
		store.EXPECT().Get(mock.Anything, StorageKey).Return(nil, nil).Once()
		s := NewService(entity.DefaultLoggerConfig(), store, nil, nil, nil)

		logs, err := s.GetLogs(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})
}

func TestStorageFailuresDuringLogCall(t *testing.T) {
	t.Run("Read failure starts from an empty list", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(42))
		store := persistencemocks.NewMockKeyValueStore(t)
		logger := coremocks.NewMockLogger(t)

		store.EXPECT().Get(mock.Anything, StorageKey).Return(nil, errors.New("timeout")).Once()
		var written []byte
		store.EXPECT().Set(mock.Anything, StorageKey, mock.Anything, entity.DefaultStorageTTL).
			Run(func(_ context.Context, _ string, value []byte, _ time.Duration) { written = value }).
			Return(nil).Once()
		logger.EXPECT().Warn("Reading persisted logs failed, starting from an empty list", mock.Anything).Once()

		s := NewService(storageOnly(entity.DefaultLoggerConfig()), store, nil, clock, logger)
		assert.NotPanics(t, func() { s.Info("survives") })

		var entries []entity.LogEntry
		require.NoError(t, json.Unmarshal(written, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "survives", entries[0].Message)
		assert.Equal(t, int64(42), entries[0].Timestamp)
	})

	t.Run("Corrupt list is replaced", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(1))
		store := newMemoryKV()
		store.data[StorageKey] = []byte("garbage")

		s := NewService(storageOnly(entity.DefaultLoggerConfig()), store, nil, clock, nil)
		s.Info("fresh")

		assert.Equal(t, []string{"fresh"}, messages(t, s))
	})

	t.Run("Write failure is dropped and reported", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(1))
		store := newMemoryKV()
		store.setErr = errs.ErrDatabaseConnection
		logger := coremocks.NewMockLogger(t)
		logger.EXPECT().Warn("Writing persisted logs failed, entry dropped", mock.MatchedBy(func(f map[string]any) bool {
			return f["operation"] == "set" && f["key"] == StorageKey
		})).Once()

		handled := 0
		cfg := storageOnly(entity.DefaultLoggerConfig())
		cfg.CustomHandler = func(entity.LogEntry) { handled++ }
		s := NewService(cfg, store, nil, clock, logger)

		assert.NotPanics(t, func() { s.Info("lost") })
		assert.Equal(t, 1, handled)
	})
}

func TestUnencodableDataIsStoredAsText(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)

	s.Info("with channel", make(chan int))
	s.Info("plain", map[string]any{"ok": true})

	logs, err := s.GetLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.IsType(t, "", logs[0].Data)
	assert.Equal(t, map[string]any{"ok": true}, logs[1].Data)
}

func TestErrorDataIsStoredAsText(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	var handled []entity.LogEntry
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.CustomHandler = func(e entity.LogEntry) { handled = append(handled, e) }
	s := NewService(cfg, newMemoryKV(), nil, clock, nil)

	cause := errors.New("disk full")
	s.Error("write failed", cause)
	s.Error("write failed again", cause, "retrying")

	logs, err := s.GetLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "disk full", logs[0].Data)
	assert.Equal(t, []any{"disk full", "retrying"}, logs[1].Data)
	assert.NotEmpty(t, logs[0].Stack)

	require.Len(t, handled, 2)
	assert.Same(t, cause, handled[0].Data)
	assert.Same(t, cause, handled[1].Data.([]any)[0])
}

func TestCustomHandler(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(7))

	var got []entity.LogEntry
	cfg := entity.DefaultLoggerConfig()
	cfg.EnableConsole = false
	cfg.EnableStorage = false
	cfg.CustomHandler = func(e entity.LogEntry) { got = append(got, e) }

	store := persistencemocks.NewMockKeyValueStore(t)
	console := coremocks.NewMockConsoleSink(t)
	s := NewService(cfg, store, console, clock, nil)

	s.Info("hello", map[string]any{"user": "u1"})

	require.Len(t, got, 1)
	assert.Equal(t, entity.LevelInfo, got[0].Level)
	assert.Equal(t, "hello", got[0].Message)
	assert.Equal(t, map[string]any{"user": "u1"}, got[0].Data)
	assert.Equal(t, int64(7), got[0].Timestamp)
	assert.NotEmpty(t, got[0].Source)
}

func TestCustomHandlerCalledOncePerCall(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	console := coremocks.NewMockConsoleSink(t)
	console.EXPECT().Write(mock.Anything).Times(3)

	calls := 0
	cfg := entity.DefaultLoggerConfig()
	cfg.CustomHandler = func(entity.LogEntry) { calls++ }
	s := NewService(cfg, newMemoryKV(), console, clock, nil)

	s.Info("a")
	s.Warn("b")
	s.Error("c")

	assert.Equal(t, 3, calls)
}

func TestConsoleSink(t *testing.T) {
	t.Run("Receives entry when enabled", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(1609459200000))
		console := coremocks.NewMockConsoleSink(t)
		console.EXPECT().Write(mock.MatchedBy(func(e entity.LogEntry) bool {
			return e.Message == "Test message" && e.Level == entity.LevelInfo && e.Timestamp == 1609459200000
		})).Once()

		cfg := entity.DefaultLoggerConfig()
		cfg.EnableStorage = false
		s := NewService(cfg, nil, console, clock, nil)

		s.Info("Test message", map[string]any{"test": "data"})
	})

	t.Run("Skipped when disabled", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(1))
		console := coremocks.NewMockConsoleSink(t)

		cfg := entity.DefaultLoggerConfig()
		cfg.EnableConsole = false
		cfg.EnableStorage = false
		s := NewService(cfg, nil, console, clock, nil)

		s.Error("quiet")
	})
}

func TestSinkPanicIsContained(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	console := coremocks.NewMockConsoleSink(t)
	console.EXPECT().Write(mock.Anything).Run(func(entity.LogEntry) { panic("console broke") }).Once()
	logger := coremocks.NewMockLogger(t)
	logger.EXPECT().Error("Log sink failed", mock.MatchedBy(func(f map[string]any) bool {
		return f["sink"] == "console" && f["error"] == "console broke"
	})).Once()

	handled := 0
	cfg := entity.DefaultLoggerConfig()
	cfg.CustomHandler = func(entity.LogEntry) { handled++ }
	s := NewService(cfg, newMemoryKV(), console, clock, logger)

	assert.NotPanics(t, func() { s.Warn("still stored") })
	assert.Equal(t, []string{"still stored"}, messages(t, s))
	assert.Equal(t, 1, handled)
}

func TestCustomHandlerPanicIsContained(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	logger := coremocks.NewMockLogger(t)
	logger.EXPECT().Error("Log sink failed", mock.MatchedBy(func(f map[string]any) bool {
		return f["sink"] == "custom"
	})).Once()

	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.CustomHandler = func(entity.LogEntry) { panic(errors.New("handler bug")) }
	s := NewService(cfg, newMemoryKV(), nil, clock, logger)

	assert.NotPanics(t, func() { s.Info("ok") })
	assert.Equal(t, []string{"ok"}, messages(t, s))
}

func TestErrorPayload(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	var got []entity.LogEntry
	cfg := entity.DefaultLoggerConfig()
	cfg.EnableConsole = false
	cfg.EnableStorage = false
	cfg.CustomHandler = func(e entity.LogEntry) { got = append(got, e) }
	s := NewService(cfg, nil, nil, clock, nil)

	t.Run("Plain error gets the call stack", func(t *testing.T) {
		got = nil
		testErr := errors.New("Test error")
		s.Error("failed", testErr)

		require.Len(t, got, 1)
		assert.Same(t, testErr, got[0].Data)
		assert.Contains(t, got[0].Stack, "TestErrorPayload")
	})

	t.Run("Error with its own stack keeps it", func(t *testing.T) {
		got = nil
		stacked := errs.WithStack(errors.New("deep"))
		s.Error("failed", fmt.Errorf("wrapped: %w", stacked))

		require.Len(t, got, 1)
		dataErr, ok := got[0].Data.(error)
		require.True(t, ok, "handler receives the error value")
		assert.ErrorIs(t, dataErr, stacked)
		assert.Equal(t, "wrapped: deep", dataErr.Error())
		assert.Equal(t, stacked.(interface{ Stack() string }).Stack(), got[0].Stack)
	})

	t.Run("Non-error data has no stack", func(t *testing.T) {
		got = nil
		s.Error("failed", map[string]any{"code": 7})

		require.Len(t, got, 1)
		assert.Equal(t, map[string]any{"code": 7}, got[0].Data)
		assert.Empty(t, got[0].Stack)
	})

	t.Run("No argument", func(t *testing.T) {
		got = nil
		s.Error("bare")

		require.Len(t, got, 1)
		assert.Nil(t, got[0].Data)
		assert.Empty(t, got[0].Stack)
	})

	t.Run("Several values become a list", func(t *testing.T) {
		got = nil
		s.Info("many", "a", 2)

		require.Len(t, got, 1)
		assert.Equal(t, []any{"a", 2}, got[0].Data)
	})
}

func TestTimestampsNeverDecrease(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(5000))
	s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)

	s.Info("first")
	clock.SetMillis(4000)
	s.Info("clock went back")

	logs, err := s.GetLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(5000), logs[0].Timestamp)
	assert.Equal(t, int64(5000), logs[1].Timestamp)
}

func TestSetConfig(t *testing.T) {
	t.Run("Partial merge", func(t *testing.T) {
		s := NewService(entity.DefaultLoggerConfig(), nil, nil, nil, nil)

		require.NoError(t, s.SetConfig(entity.ConfigPatch{Level: entity.LevelPtr(entity.LevelDebug)}))

		cfg := s.GetConfig()
		assert.Equal(t, entity.LevelDebug, cfg.Level)
		assert.True(t, cfg.EnableConsole)
		assert.True(t, cfg.EnableStorage)
		assert.Equal(t, entity.DefaultStorageTTL, cfg.StorageTTL)
	})

	t.Run("Invalid result is rejected", func(t *testing.T) {
		s := NewService(entity.DefaultLoggerConfig(), nil, nil, nil, nil)

		err := s.SetConfig(entity.ConfigPatch{MaxStorageEntries: entity.IntPtr(0)})
		assert.ErrorIs(t, err, errs.ErrInvalidConfig)

		err = s.SetConfig(entity.ConfigPatch{Level: entity.LevelPtr("chatty")})
		assert.ErrorIs(t, err, errs.ErrInvalidLogLevel)

		assert.Equal(t, entity.DefaultLoggerConfig().MaxStorageEntries, s.GetConfig().MaxStorageEntries)
		assert.Equal(t, entity.LevelInfo, s.GetConfig().Level)
	})

	t.Run("Sub-millisecond TTL is rejected", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(1))
		s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)

		err := s.SetConfig(entity.ConfigPatch{StorageTTL: entity.DurationPtr(500 * time.Microsecond)})
		assert.ErrorIs(t, err, errs.ErrInvalidConfig)
		assert.Equal(t, entity.DefaultStorageTTL, s.GetConfig().StorageTTL)

		s.Info("kept")
		assert.Equal(t, []string{"kept"}, messages(t, s))
	})

	t.Run("GetConfig returns a copy", func(t *testing.T) {
		s := NewService(entity.DefaultLoggerConfig(), nil, nil, nil, nil)

		cfg := s.GetConfig()
		cfg.Level = entity.LevelError
		assert.Equal(t, entity.LevelInfo, s.GetConfig().Level)
	})

	t.Run("Lower capacity applies on the next write", func(t *testing.T) {
		clock := newSettableClock(t, time.UnixMilli(1))
		s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)
		for i := 0; i < 5; i++ {
			s.Info(fmt.Sprintf("m%d", i))
		}

		require.NoError(t, s.SetConfig(entity.ConfigPatch{MaxStorageEntries: entity.IntPtr(2)}))
		assert.Len(t, messages(t, s), 5)

		s.Info("m5")
		assert.Equal(t, []string{"m4", "m5"}, messages(t, s))
	})
}

func TestConcurrentWritesAreNotLost(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Info(fmt.Sprintf("concurrent %d", i))
		}(i)
	}
	wg.Wait()

	got := messages(t, s)
	assert.Len(t, got, writers)
	for _, m := range got {
		assert.True(t, strings.HasPrefix(m, "concurrent "))
	}
}
