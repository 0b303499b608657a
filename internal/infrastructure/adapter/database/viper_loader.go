package database

import (
	"fmt"

	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/config"
)

// CreateConfigFromViperConfig adapts the application configuration to a
// database configuration. HL_DB_* variables already applied by DefaultConfig
// keep precedence for credentials.
func CreateConfigFromViperConfig(conf *config.Config) *Config {
	dbConf := DefaultConfig()
	src := conf.Database

	if src.Driver != "" {
		dbConf.Driver = src.Driver
	}

	// Only use conf values if environment variables aren't set
	if dbConf.Host == "" {
		dbConf.Host = src.Host
	}
	if port := ParsePort(src.Port); port > 0 {
		dbConf.Port = port
	}
	if dbConf.Username == "" {
		dbConf.Username = src.Username
	}
	if dbConf.Password == "" {
		dbConf.Password = src.Password
	}
	if dbConf.Database == "" {
		dbConf.Database = src.Database
	}

	if src.SSLMode != "" {
		dbConf.SSLMode = src.SSLMode
	}
	if src.MaxOpenConns > 0 {
		dbConf.MaxOpenConns = src.MaxOpenConns
	}
	if src.MaxIdleConns > 0 {
		dbConf.MaxIdleConns = src.MaxIdleConns
	}
	if src.ConnMaxLifetime > 0 {
		dbConf.ConnMaxLifetime = src.ConnMaxLifetime
	}
	if src.ConnMaxIdleTime > 0 {
		dbConf.ConnMaxIdleTime = src.ConnMaxIdleTime
	}
	if src.QueryTimeout > 0 {
		dbConf.QueryTimeout = src.QueryTimeout
	}
	if src.SlowThreshold > 0 {
		dbConf.SlowThreshold = src.SlowThreshold
	}
	if src.LogLevel != "" {
		dbConf.LogLevel = src.LogLevel
	}
	if src.RetryAttempts > 0 {
		dbConf.RetryAttempts = src.RetryAttempts
	}
	if src.RetryDelay > 0 {
		dbConf.RetryDelay = src.RetryDelay
	}

	// A single connection keeps every query on the same in-memory database
	if dbConf.Driver == DriverSQLite && dbConf.Database == ":memory:" {
		dbConf.MaxOpenConns = 1
		dbConf.MaxIdleConns = 1
	}

	return dbConf
}

// ParsePort converts a port string to an int, returning 0 when it is not a valid port
func ParsePort(port string) int {
	var p int
	_, err := fmt.Sscanf(port, "%d", &p)
	if err != nil || p <= 0 || p > 65535 {
		return 0
	}
	return p
}
