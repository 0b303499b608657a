package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/database/migration"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultMonitorInterval is how often the connection pool is sampled
const DefaultMonitorInterval = 30 * time.Second

// Manager manages database connections
type Manager struct {
	config            *Config
	db                *gorm.DB
	logger            coreport.Logger
	errorMapper       *ErrorMapper
	metrics           *MetricsCollector
	connectionMonitor *ConnectionPoolMonitor
	timeProvider      coreport.TimeProvider
}

// NewManager creates a new database manager
func NewManager(config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		config:       config,
		logger:       logger,
		errorMapper:  NewErrorMapper(),
		metrics:      NewMetricsCollector(logger, timeProvider, config.SlowThreshold),
		timeProvider: timeProvider,
	}
}

// Connect opens the database, retrying transient failures, and applies pool settings
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	m.logger.Info("Connecting to database", map[string]any{
		"driver": m.config.Driver,
		"host":   m.config.Host,
		"port":   m.config.Port,
		"name":   m.config.Database,
	})

	dialector, err := m.dialector()
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: NewDatabaseLogger(m.logger, m.timeProvider, m.config.LogLevel, m.config.SlowThreshold),
		NowFunc: func() time.Time {
			return m.timeProvider.Now().UTC()
		},
	}

	var gormDB *gorm.DB
	retry := RetryConfig{
		MaxAttempts:   m.config.RetryAttempts,
		RetryInterval: m.config.RetryDelay,
		MaxInterval:   8 * m.config.RetryDelay,
	}
	err = RetryOnTransientError(ctx, retry, func() error {
		db, openErr := gorm.Open(dialector, gormConfig)
		if openErr != nil {
			return openErr
		}
		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}
		pingCtx, cancel := m.WithTimeout(ctx)
		defer cancel()
		if openErr = sqlDB.PingContext(pingCtx); openErr != nil {
			_ = sqlDB.Close()
			return openErr
		}
		gormDB = db
		return nil
	}, m.logger)
	if err != nil {
		m.logger.Error("Failed to connect to database", map[string]any{
			"error":    err.Error(),
			"attempts": m.config.RetryAttempts,
		})
		return nil, m.errorMapper.MapError(err, "connect")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(m.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(m.config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(m.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)

	m.logger.Info("Successfully connected to database", map[string]any{
		"driver":         m.config.Driver,
		"name":           m.config.Database,
		"max_open_conns": m.config.MaxOpenConns,
		"max_idle_conns": m.config.MaxIdleConns,
		"query_timeout":  m.config.QueryTimeout.String(),
	})

	m.db = gormDB
	return m.db, nil
}

// StartMonitoring samples the connection pool every interval until Close
func (m *Manager) StartMonitoring(interval time.Duration) error {
	if m.db == nil {
		return errors.New("database is not connected")
	}
	if m.connectionMonitor != nil {
		return nil
	}

	monitor := NewConnectionPoolMonitor(m, m.logger)
	if err := monitor.Start(interval); err != nil {
		return err
	}
	m.connectionMonitor = monitor
	return nil
}

// Migrate brings the schema up to date
func (m *Manager) Migrate(ctx context.Context) error {
	if m.db == nil {
		return errors.New("database is not connected")
	}
	return migration.NewMigrationManager(m.db, m.logger, m.timeProvider).MigrateAll(ctx)
}

// Ping checks the database is reachable within the query timeout
func (m *Manager) Ping(ctx context.Context) error {
	if m.db == nil {
		return m.errorMapper.MapError(errors.New("no connection"), "ping")
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return m.errorMapper.MapError(err, "ping")
	}

	pingCtx, cancel := m.WithTimeout(ctx)
	defer cancel()
	return m.errorMapper.MapError(sqlDB.PingContext(pingCtx), "ping")
}

// PoolMetrics returns the last pool sample, or zero values when monitoring is off
func (m *Manager) PoolMetrics() ConnectionPoolMetrics {
	if m.connectionMonitor == nil {
		return ConnectionPoolMetrics{}
	}
	return m.connectionMonitor.GetMetrics()
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close stops monitoring and closes the database connection
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection", nil)

	if m.connectionMonitor != nil {
		m.connectionMonitor.Stop()
	}
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	return sqlDB.Close()
}

// WithTimeout returns a context bounded by the configured query timeout
func (m *Manager) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return m.timeProvider.WithTimeout(ctx, m.config.QueryTimeout)
}

// ErrorMapper returns the error mapper
func (m *Manager) ErrorMapper() *ErrorMapper {
	return m.errorMapper
}

// Metrics returns the query metrics collector
func (m *Manager) Metrics() *MetricsCollector {
	return m.metrics
}

// dialector selects the GORM driver for the configured database
func (m *Manager) dialector() (gorm.Dialector, error) {
	switch m.config.Driver {
	case DriverPostgres:
		return postgres.Open(m.config.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(m.config.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", m.config.Driver)
	}
}
