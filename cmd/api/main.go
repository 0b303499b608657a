package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/health-logger/internal/domain/usecase/logging"

	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/storage"
	timeProvider "github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// logStore is the key-value store behind persisted logs plus what it needs at shutdown
type logStore struct {
	store  persistence.KeyValueStore
	pinger handler.Pinger
	close  func()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLoggerWithOptions(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	loggerConfig, err := cfg.LoggerConfig()
	if err != nil {
		appLogger.Error("Invalid logger configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ls, err := openLogStore(cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to open log store", map[string]any{
			"driver": cfg.Storage.Driver,
			"error":  err.Error(),
		})
		os.Exit(1)
	}
	defer ls.close()

	console := logger.NewConsoleSink(logger.ConsoleSinkOptions{
		File:          cfg.Logger.ConsoleFile,
		MaxSizeMB:     100,
		MaxBackups:    5,
		MaxAgeDays:    28,
		Compress:      true,
		IncludeSource: cfg.Logger.CallerInfo,
	})
	defer func() { _ = console.Close() }()

	if cfg.Logger.ForwardToAppLogger {
		loggerConfig.CustomHandler = logging.ForwardingHandler(appLogger)
	}

	service := logging.NewService(loggerConfig, ls.store, console, tp, appLogger,
		logging.WithStorageTimeout(cfg.Storage.QueryTimeout))
	logging.SetInstance(service)

	service.Info("Health logger started", map[string]any{
		"environment": cfg.Environment,
		"storage":     cfg.Storage.Driver,
		"level":       string(loggerConfig.Level),
	})

	logHandler := handler.NewLogHandler(service, appLogger)
	healthHandler := handler.NewHealthHandler(ls.pinger, cfg.Storage.Driver, tp, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp)
	routes.SetupRoutes(router, logHandler, healthHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)
	service.Info("Health logger stopping", nil)

	ctx, cancel := tp.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// openLogStore builds the key-value store selected by storage.driver. Keys are
// namespaced with storage.prefix in both cases.
func openLogStore(cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*logStore, error) {
	if !cfg.UsesDatabase() {
		return &logStore{
			store: storage.NewNamespacedStore(storage.NewMemoryStore(tp), cfg.Storage.Prefix),
			close: func() {},
		}, nil
	}

	dbManager := database.NewManager(database.CreateConfigFromViperConfig(cfg), appLogger, tp)
	ctx := context.Background()

	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, err
	}
	if err := dbManager.Migrate(ctx); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := dbManager.StartMonitoring(database.DefaultMonitorInterval); err != nil {
		appLogger.Warn("Failed to start connection pool monitoring", map[string]any{"error": err.Error()})
	}

	repo := repository.NewKVRepository(dbManager.DB(), tp, appLogger, dbManager.Metrics())
	stopPurge := startPurge(repo, cfg.Storage.PurgeInterval, appLogger)

	return &logStore{
		store:  storage.NewNamespacedStore(repo, cfg.Storage.Prefix),
		pinger: dbManager,
		close: func() {
			stopPurge()
			if err := dbManager.Close(); err != nil {
				appLogger.Error("Failed to close database", map[string]any{"error": err.Error()})
			}
		},
	}, nil
}

// startPurge deletes expired rows every interval until the returned func is called
func startPurge(repo *repository.KVRepository, interval time.Duration, appLogger coreport.Logger) func() {
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := repo.PurgeExpired(ctx); err != nil {
					appLogger.Warn("Purging expired keys failed", map[string]any{"error": err.Error()})
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// validateConfig checks the settings main depends on and warns about weak production settings
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	switch cfg.Environment {
	case config.Development, config.Production, config.Test:
	default:
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.IsProduction() {
		var warnings []string

		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if cfg.UsesDatabase() && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if !cfg.UsesDatabase() {
			warnings = append(warnings, "storage.driver is memory; persisted logs are lost on restart")
		}
		if cfg.Logger.Level == string(entity.LevelDebug) {
			warnings = append(warnings, "logger.level is debug in production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
