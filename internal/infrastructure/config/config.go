package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	domainErr "github.com/amirhossein-jamali/health-logger/internal/domain/error"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageDatabase = "database"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Storage     StorageConfig  `mapstructure:"storage"`
	Logger      LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`
	SlowThreshold   time.Duration `mapstructure:"slowThreshold"`
	LogLevel        string        `mapstructure:"logLevel"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`
}

// StorageConfig selects and tunes the key-value store behind persisted logs
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"` // memory or database
	Prefix        string        `mapstructure:"prefix"`
	QueryTimeout  time.Duration `mapstructure:"queryTimeout"`
	PurgeInterval time.Duration `mapstructure:"purgeInterval"` // 0 disables the expired-row sweep
}

// LoggerConfig contains logger settings. Level applies both to the
// application's own diagnostics and to the capture threshold.
type LoggerConfig struct {
	Level              string        `mapstructure:"level"`
	Format             string        `mapstructure:"format"`
	Output             string        `mapstructure:"output"`
	ConsoleFile        string        `mapstructure:"consoleFile"`
	CallerInfo         bool          `mapstructure:"callerInfo"`
	EnableConsole      bool          `mapstructure:"enableConsole"`
	EnableStorage      bool          `mapstructure:"enableStorage"`
	StorageTTL         time.Duration `mapstructure:"storageTTL"`
	MaxStorageEntries  int           `mapstructure:"maxStorageEntries"`
	ForwardToAppLogger bool          `mapstructure:"forwardToAppLogger"`
}

// LoggerConfig converts the logger section into the capture configuration
func (c *Config) LoggerConfig() (entity.LoggerConfig, error) {
	level, err := entity.ParseLogLevel(c.Logger.Level)
	if err != nil {
		return entity.LoggerConfig{}, err
	}

	cfg := entity.LoggerConfig{
		Level:             level,
		EnableConsole:     c.Logger.EnableConsole,
		EnableStorage:     c.Logger.EnableStorage,
		StorageTTL:        c.Logger.StorageTTL,
		MaxStorageEntries: c.Logger.MaxStorageEntries,
	}
	if err := cfg.Validate(); err != nil {
		return entity.LoggerConfig{}, err
	}
	return cfg, nil
}

// Validate checks the sections this package owns. Database settings are
// validated by the database adapter when a connection is made.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port %d", domainErr.ErrInvalidConfig, c.Server.Port)
	}

	switch strings.ToLower(c.Storage.Driver) {
	case StorageMemory, StorageDatabase:
	default:
		return fmt.Errorf("%w: unsupported storage driver %q", domainErr.ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Storage.QueryTimeout <= 0 {
		return fmt.Errorf("%w: storage query timeout must be positive", domainErr.ErrInvalidConfig)
	}
	if c.Storage.PurgeInterval < 0 {
		return fmt.Errorf("%w: storage purge interval must not be negative", domainErr.ErrInvalidConfig)
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unsupported logger format %q", domainErr.ErrInvalidConfig, c.Logger.Format)
	}

	_, err := c.LoggerConfig()
	return err
}

// UsesDatabase reports whether persisted logs live in the database
func (c *Config) UsesDatabase() bool {
	return strings.EqualFold(c.Storage.Driver, StorageDatabase)
}

// IsProduction reports whether the production environment is active
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
