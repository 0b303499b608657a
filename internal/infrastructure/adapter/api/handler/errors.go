package handler

import (
	"errors"
	"net/http"

	domainerr "github.com/amirhossein-jamali/health-logger/internal/domain/error"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// statusFor maps a domain error to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrInvalidLogLevel),
		errors.Is(err, domainerr.ErrInvalidConfig),
		errors.Is(err, domainerr.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrLogStoreUnavailable),
		errors.Is(err, domainerr.ErrDatabaseConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Server errors get a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		message = "Internal server error"
	}

	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponse{
		Code:      domainerr.ErrorCode(err),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}
