package logging

import (
	"testing"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	coremocks "github.com/amirhossein-jamali/health-logger/mocks/port/core"
	"github.com/stretchr/testify/mock"
)

func TestForwardingHandler(t *testing.T) {
	logger := coremocks.NewMockLogger(t)
	handler := ForwardingHandler(logger)

	logger.EXPECT().Debug("d", mock.MatchedBy(func(f map[string]any) bool {
		_, hasData := f["data"]
		return f["source"] == "pkg.Fn (f.go:1)" && f["log_timestamp"] == int64(10) && !hasData
	})).Once()
	logger.EXPECT().Info("i", mock.MatchedBy(func(f map[string]any) bool {
		return f["data"] == "payload"
	})).Once()
	logger.EXPECT().Warn("w", mock.Anything).Once()
	logger.EXPECT().Error("e", mock.MatchedBy(func(f map[string]any) bool {
		return f["stack"] == "trace"
	})).Once()

	handler(entity.LogEntry{Timestamp: 10, Level: entity.LevelDebug, Message: "d", Source: "pkg.Fn (f.go:1)"})
	handler(entity.LogEntry{Level: entity.LevelInfo, Message: "i", Data: "payload"})
	handler(entity.LogEntry{Level: entity.LevelWarn, Message: "w"})
	handler(entity.LogEntry{Level: entity.LevelError, Message: "e", Stack: "trace"})
}
