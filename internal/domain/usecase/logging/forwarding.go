package logging

import (
	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
)

// ForwardingHandler returns a custom handler that re-emits every accepted
// entry on the application's diagnostic logger
func ForwardingHandler(logger coreport.Logger) entity.LogHandler {
	return func(entry entity.LogEntry) {
		fields := map[string]any{
			"log_timestamp": entry.Timestamp,
			"source":        entry.Source,
		}
		if entry.Data != nil {
			fields["data"] = entry.Data
		}
		if entry.Stack != "" {
			fields["stack"] = entry.Stack
		}

		switch entry.Level {
		case entity.LevelDebug:
			logger.Debug(entry.Message, fields)
		case entity.LevelInfo:
			logger.Info(entry.Message, fields)
		case entity.LevelWarn:
			logger.Warn(entry.Message, fields)
		default:
			logger.Error(entry.Message, fields)
		}
	}
}
