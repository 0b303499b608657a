package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/health-logger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/domain/usecase/logging"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// LogHandler exposes the logging service over HTTP
type LogHandler struct {
	service *logging.Service
	logger  coreport.Logger
}

// NewLogHandler creates a new log handler instance
func NewLogHandler(service *logging.Service, logger coreport.Logger) *LogHandler {
	return &LogHandler{
		service: service,
		logger:  logger,
	}
}

// GetLogs handles GET /logs. Query parameters: level (repeatable or
// comma separated) and maxEntries.
func (h *LogHandler) GetLogs(c *gin.Context) {
	filter, err := parseViewFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.service.View(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Reading persisted logs failed", map[string]any{
			"error": err.Error(),
		})
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLogsResponse(entries))
}

// ClearLogs handles DELETE /logs
func (h *LogHandler) ClearLogs(c *gin.Context) {
	if err := h.service.ClearLogs(c.Request.Context()); err != nil {
		h.logger.Error("Clearing persisted logs failed", map[string]any{
			"error": err.Error(),
		})
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IngestLog handles POST /logs
func (h *LogHandler) IngestLog(c *gin.Context) {
	var req dto.IngestLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", domainerr.ErrInvalidRequest, err.Error()))
		return
	}

	level, err := entity.ParseLogLevel(req.Level)
	if err != nil {
		respondError(c, err)
		return
	}

	accepted := level.Enabled(h.service.GetConfig().Level)
	if req.Data != nil {
		h.service.Log(level, req.Message, req.Data)
	} else {
		h.service.Log(level, req.Message)
	}

	c.JSON(http.StatusAccepted, dto.IngestLogResponse{
		Accepted: accepted,
		Level:    string(level),
	})
}

// GetConfig handles GET /logs/config
func (h *LogHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewConfigResponse(h.service.GetConfig()))
}

// UpdateConfig handles PATCH /logs/config
func (h *LogHandler) UpdateConfig(c *gin.Context) {
	var req dto.ConfigPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", domainerr.ErrInvalidRequest, err.Error()))
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		respondError(c, err)
		return
	}
	if patch.IsEmpty() {
		respondError(c, fmt.Errorf("%w: no configuration fields given", domainerr.ErrInvalidRequest))
		return
	}

	if err := h.service.SetConfig(patch); err != nil {
		respondError(c, err)
		return
	}

	cfg := h.service.GetConfig()
	h.logger.Info("Logger configuration changed", map[string]any{
		"level":               string(cfg.Level),
		"enable_console":      cfg.EnableConsole,
		"enable_storage":      cfg.EnableStorage,
		"max_storage_entries": cfg.MaxStorageEntries,
	})
	c.JSON(http.StatusOK, dto.NewConfigResponse(cfg))
}

func parseViewFilter(c *gin.Context) (logging.ViewFilter, error) {
	var filter logging.ViewFilter

	for _, raw := range c.QueryArray("level") {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			level, err := entity.ParseLogLevel(part)
			if err != nil {
				return logging.ViewFilter{}, err
			}
			filter.Levels = append(filter.Levels, level)
		}
	}

	if raw := c.Query("maxEntries"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return logging.ViewFilter{}, fmt.Errorf("%w: maxEntries must be a positive integer", domainerr.ErrInvalidRequest)
		}
		filter.MaxEntries = n
	}

	return filter, nil
}
