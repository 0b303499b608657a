package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "HL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = loadDotEnvFile()

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return buildConfig(v, env)
}

// LoadConfigFromFile loads configuration from an explicit YAML file. The
// environment name is taken from HL_ENV.
func LoadConfigFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return buildConfig(v, getEnvironment())
}

func buildConfig(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found on the search paths
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "15s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connMaxIdleTime", "15m")
	v.SetDefault("database.queryTimeout", "5s")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "1s")

	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.prefix", "health_")
	v.SetDefault("storage.queryTimeout", "5s")
	v.SetDefault("storage.purgeInterval", "1h")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.consoleFile", "")
	v.SetDefault("logger.callerInfo", true)
	v.SetDefault("logger.enableConsole", true)
	v.SetDefault("logger.enableStorage", true)
	v.SetDefault("logger.storageTTL", "168h")
	v.SetDefault("logger.maxStorageEntries", 1000)
	v.SetDefault("logger.forwardToAppLogger", false)
}

// getEnvironment determines the environment from HL_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv("HL_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides maps the flat HL_* variables onto their config keys.
// Environment variables win over file values.
func processEnvOverrides(v *viper.Viper) {
	overrides := map[string]string{
		"HL_DB_DRIVER":       "database.driver",
		"HL_DB_HOST":         "database.host",
		"HL_DB_PORT":         "database.port",
		"HL_DB_USERNAME":     "database.username",
		"HL_DB_PASSWORD":     "database.password",
		"HL_DB_NAME":         "database.database",
		"HL_DB_SSL_MODE":     "database.sslMode",
		"HL_DB_LOG_LEVEL":    "database.logLevel",
		"HL_SERVER_HOST":     "server.host",
		"HL_STORAGE_DRIVER":  "storage.driver",
		"HL_STORAGE_PREFIX":  "storage.prefix",
		"HL_LOGGER_LEVEL":    "logger.level",
		"HL_LOGGER_FORMAT":   "logger.format",
		"HL_LOGGER_OUTPUT":   "logger.output",
		"HL_LOGGER_CONSOLE":  "logger.consoleFile",
		"HL_LOGGER_TTL":      "logger.storageTTL",
		"HL_STORAGE_TIMEOUT": "storage.queryTimeout",
	}
	for env, key := range overrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	if port := getEnvInt("HL_SERVER_PORT", 0); port > 0 {
		v.Set("server.port", port)
	}
	if maxOpenConns := getEnvInt("HL_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if maxIdleConns := getEnvInt("HL_DB_MAX_IDLE_CONNS", 0); maxIdleConns > 0 {
		v.Set("database.maxIdleConns", maxIdleConns)
	}
	if retryAttempts := getEnvInt("HL_DB_RETRY_ATTEMPTS", -1); retryAttempts >= 0 {
		v.Set("database.retryAttempts", retryAttempts)
	}
	if maxEntries := getEnvInt("HL_LOGGER_MAX_ENTRIES", 0); maxEntries > 0 {
		v.Set("logger.maxStorageEntries", maxEntries)
	}
}

// getEnvInt reads an integer environment variable, returning defaultVal when unset or malformed
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
