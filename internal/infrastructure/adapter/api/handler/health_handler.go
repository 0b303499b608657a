package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	pinger       Pinger
	storage      string
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewHealthHandler creates a health handler. A nil pinger means the store
// lives in memory and is always reachable.
func NewHealthHandler(pinger Pinger, storage string, timeProvider coreport.TimeProvider, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{
		pinger:       pinger,
		storage:      storage,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:  "ok",
		Storage: h.storage,
		Time:    h.timeProvider.Now().UTC().Format(time.RFC3339),
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			h.logger.Warn("Health check failed", map[string]any{
				"storage": h.storage,
				"error":   err.Error(),
			})
			resp.Status = "degraded"
			resp.Error = err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
