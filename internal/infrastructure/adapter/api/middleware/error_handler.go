package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	domainerr "github.com/amirhossein-jamali/health-logger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware recovers from panics and returns appropriate error responses
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      fmt.Sprint(err),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": GetRequestID(c),
					"user_agent": c.Request.UserAgent(),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:      domainerr.ErrorCode(domainerr.ErrInternalServer),
					Message:   "Internal server error",
					RequestID: GetRequestID(c),
				})
			}
		}()

		c.Next()
	}
}
