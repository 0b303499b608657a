package logging

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/domain/port/persistence"
)

// StorageKey is the key the persisted log list lives under
const StorageKey = "logs"

// DefaultStorageTimeout bounds each storage round trip made during a log call
const DefaultStorageTimeout = 5 * time.Second

// Service captures log calls, filters them by level and fans accepted
// entries out to the console, the persistent store and a custom handler
type Service struct {
	mu     sync.RWMutex
	config entity.LoggerConfig

	// storeMu serializes the read-modify-write of the persisted list
	storeMu        sync.Mutex
	store          persistence.KeyValueStore
	storageTimeout time.Duration

	console      coreport.ConsoleSink
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	lastMu        sync.Mutex
	lastTimestamp int64
}

// Option customizes a Service
type Option func(*Service)

// WithStorageTimeout sets the timeout applied to storage calls made while logging
func WithStorageTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.storageTimeout = timeout
		}
	}
}

// NewService creates a logging service. Zero-valued level, TTL and capacity
// fall back to their defaults. A nil store or console disables that sink;
// a nil time provider or logger is replaced by the system clock and a silent logger.
func NewService(
	cfg entity.LoggerConfig,
	store persistence.KeyValueStore,
	console coreport.ConsoleSink,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	opts ...Option,
) *Service {
	if timeProvider == nil {
		timeProvider = systemClock{}
	}
	if logger == nil {
		logger = silentLogger{}
	}

	s := &Service{
		config:         cfg.WithDefaults(),
		store:          store,
		storageTimeout: DefaultStorageTimeout,
		console:        console,
		timeProvider:   timeProvider,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetConfig returns a copy of the current configuration
func (s *Service) GetConfig() entity.LoggerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetConfig merges patch into the current configuration. Fields the patch
// leaves nil keep their values. Entries already persisted are not touched.
// An invalid result is rejected and the configuration stays as it was.
func (s *Service) SetConfig(patch entity.ConfigPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.config)
	if err := next.Validate(); err != nil {
		return err
	}
	s.config = next

	s.logger.Debug("Logger configuration updated", map[string]any{
		"level":               string(next.Level),
		"enable_console":      next.EnableConsole,
		"enable_storage":      next.EnableStorage,
		"storage_ttl":         next.StorageTTL.String(),
		"max_storage_entries": next.MaxStorageEntries,
		"custom_handler":      next.CustomHandler != nil,
	})
	return nil
}

// Debug logs a message at debug level
func (s *Service) Debug(message string, data ...any) {
	s.log(entity.LevelDebug, message, collectData(data), "")
}

// Info logs a message at info level
func (s *Service) Info(message string, data ...any) {
	s.log(entity.LevelInfo, message, collectData(data), "")
}

// Warn logs a message at warn level
func (s *Service) Warn(message string, data ...any) {
	s.log(entity.LevelWarn, message, collectData(data), "")
}

// Error logs a message at error level. When the first argument is an error
// its text becomes the entry's data and its stack trace is attached.
func (s *Service) Error(message string, errOrData ...any) {
	data, stack := errorPayload(errOrData)
	s.log(entity.LevelError, message, data, stack)
}

// Log logs a message at an arbitrary level. Unknown levels are dropped.
func (s *Service) Log(level entity.LogLevel, message string, data ...any) {
	s.log(level, message, collectData(data), "")
}

// log is the single ingestion path. Its depth below the public wrappers is
// fixed so resolveSource can skip a constant number of frames.
func (s *Service) log(level entity.LogLevel, message string, data any, stack string) {
	cfg := s.GetConfig()
	if !level.IsValid() || !level.Enabled(cfg.Level) {
		return
	}

	entry := entity.LogEntry{
		Timestamp: s.nextTimestamp(),
		Level:     level,
		Message:   message,
		Data:      data,
		Stack:     stack,
		Source:    resolveSource(),
	}

	s.dispatch(entry, cfg)
}

// nextTimestamp reads the clock and never returns less than the previous value
func (s *Service) nextTimestamp() int64 {
	now := s.timeProvider.Now().UnixMilli()

	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	if now < s.lastTimestamp {
		now = s.lastTimestamp
	}
	s.lastTimestamp = now
	return now
}

// GetLogs returns the persisted entries, oldest first, exactly as stored
func (s *Service) GetLogs(ctx context.Context) ([]entity.LogEntry, error) {
	if s.store == nil {
		return []entity.LogEntry{}, nil
	}
	return s.loadEntries(ctx)
}

// ClearLogs removes every persisted entry. Clearing an empty store is a no-op.
func (s *Service) ClearLogs(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.Remove(ctx, StorageKey); err != nil {
		return storeError("remove", err)
	}
	s.logger.Info("Persisted logs cleared", nil)
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time                  { return time.Now() }
func (systemClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (systemClock) Sleep(d time.Duration)           { time.Sleep(d) }
func (systemClock) WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

type silentLogger struct{}

func (silentLogger) SetLevel(coreport.LogLevel)            {}
func (silentLogger) GetLevel() coreport.LogLevel           { return coreport.LogLevelError }
func (l silentLogger) With(map[string]any) coreport.Logger { return l }
func (silentLogger) Debug(string, map[string]any)          {}
func (silentLogger) Info(string, map[string]any)           {}
func (silentLogger) Warn(string, map[string]any)           {}
func (silentLogger) Error(string, map[string]any)          {}
func (silentLogger) Flush() error                          { return nil }
