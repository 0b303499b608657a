package routes

import (
	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	logHandler *handler.LogHandler,
	healthHandler *handler.HealthHandler,
) {
	router.GET("/health", healthHandler.Health)

	logRoutes := router.Group("/logs")
	{
		logRoutes.GET("", logHandler.GetLogs)
		logRoutes.POST("", logHandler.IngestLog)
		logRoutes.DELETE("", logHandler.ClearLogs)

		logRoutes.GET("/config", logHandler.GetConfig)
		logRoutes.PATCH("/config", logHandler.UpdateConfig)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	// RequestID runs first so every later middleware can see the ID
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.CORS())
}
