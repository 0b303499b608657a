package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/health-logger/internal/domain/error"
)

// Default logger settings
const (
	DefaultStorageTTL        = 7 * 24 * time.Hour
	DefaultMaxStorageEntries = 1000
	DefaultLevel             = LevelInfo
)

// MinStorageTTL is the shortest accepted TTL. Entry ages are whole milliseconds.
const MinStorageTTL = time.Millisecond

// LogHandler receives every accepted entry when configured as a custom handler
type LogHandler func(entry LogEntry)

// LoggerConfig holds the runtime settings of the logging service
type LoggerConfig struct {
	Level             LogLevel
	EnableConsole     bool
	EnableStorage     bool
	StorageTTL        time.Duration
	MaxStorageEntries int
	CustomHandler     LogHandler
}

// DefaultLoggerConfig returns the settings used when nothing else is supplied
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:             DefaultLevel,
		EnableConsole:     true,
		EnableStorage:     true,
		StorageTTL:        DefaultStorageTTL,
		MaxStorageEntries: DefaultMaxStorageEntries,
	}
}

// WithDefaults fills zero-valued level, TTL and capacity with their defaults.
// Sink toggles are taken as given.
func (c LoggerConfig) WithDefaults() LoggerConfig {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.StorageTTL <= 0 {
		c.StorageTTL = DefaultStorageTTL
	}
	if c.MaxStorageEntries <= 0 {
		c.MaxStorageEntries = DefaultMaxStorageEntries
	}
	return c
}

// Validate checks the configuration for values the service cannot work with
func (c LoggerConfig) Validate() error {
	if !c.Level.IsValid() {
		return errs.NewInvalidLevelError(string(c.Level))
	}
	if c.StorageTTL < MinStorageTTL {
		return fmt.Errorf("%w: storage TTL must be at least %s, got %s", errs.ErrInvalidConfig, MinStorageTTL, c.StorageTTL)
	}
	if c.MaxStorageEntries <= 0 {
		return fmt.Errorf("%w: max storage entries must be positive, got %d", errs.ErrInvalidConfig, c.MaxStorageEntries)
	}
	return nil
}

// ConfigPatch is a partial LoggerConfig. Nil fields are left untouched by Apply.
type ConfigPatch struct {
	Level             *LogLevel
	EnableConsole     *bool
	EnableStorage     *bool
	StorageTTL        *time.Duration
	MaxStorageEntries *int
	// CustomHandler replaces the handler when non-nil; pointing at a nil func clears it
	CustomHandler *LogHandler
}

// Apply shallow-merges the patch into c and returns the result
func (p ConfigPatch) Apply(c LoggerConfig) LoggerConfig {
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.EnableConsole != nil {
		c.EnableConsole = *p.EnableConsole
	}
	if p.EnableStorage != nil {
		c.EnableStorage = *p.EnableStorage
	}
	if p.StorageTTL != nil {
		c.StorageTTL = *p.StorageTTL
	}
	if p.MaxStorageEntries != nil {
		c.MaxStorageEntries = *p.MaxStorageEntries
	}
	if p.CustomHandler != nil {
		c.CustomHandler = *p.CustomHandler
	}
	return c
}

// IsEmpty reports whether the patch changes nothing
func (p ConfigPatch) IsEmpty() bool {
	return p.Level == nil && p.EnableConsole == nil && p.EnableStorage == nil &&
		p.StorageTTL == nil && p.MaxStorageEntries == nil && p.CustomHandler == nil
}

// Patch helpers keep call sites short: SetConfig(entity.ConfigPatch{Level: entity.LevelPtr(entity.LevelWarn)})

// LevelPtr returns a pointer to l
func LevelPtr(l LogLevel) *LogLevel { return &l }

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// DurationPtr returns a pointer to d
func DurationPtr(d time.Duration) *time.Duration { return &d }

// IntPtr returns a pointer to n
func IntPtr(n int) *int { return &n }

// HandlerPtr returns a pointer to h
func HandlerPtr(h LogHandler) *LogHandler { return &h }
