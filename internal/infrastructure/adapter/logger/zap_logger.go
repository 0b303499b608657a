package logger

import (
	"os"
	"strings"

	"github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the application's diagnostic logger
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	CallerInfo bool
}

// ZapLogger implements the Logger interface using Zap
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger creates a new zap-based logger instance
func NewZapLogger(isProduction bool) core.Logger {
	format := "console"
	if isProduction {
		format = "json"
	}
	return NewZapLoggerWithOptions(Options{Level: "info", Format: format, Output: "stdout"})
}

// NewZapLoggerWithOptions builds a logger from the logger section of the config
func NewZapLoggerWithOptions(opts Options) core.Logger {
	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder

	if strings.EqualFold(opts.Format, "json") {
		// In production, use a JSON encoder for structured logging
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"

	if strings.EqualFold(opts.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(toZapLevel(core.ParseLogLevel(opts.Level)))

	zapOpts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if opts.CallerInfo {
		// Skip the ZapLogger method itself
		zapOpts = append(zapOpts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	zl := zap.New(zapcore.NewCore(encoder, outputSyncer(opts.Output), level), zapOpts...)
	return newZapLogger(zl, level)
}

// NewDefaultLogger creates a standard logger for the application
func NewDefaultLogger() core.Logger {
	return NewZapLogger(false) // Default to development mode
}

func newZapLogger(zl *zap.Logger, level zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{logger: zl, level: level}
}

func outputSyncer(output string) zapcore.WriteSyncer {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	default:
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   output,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	}
}

func toZapLevel(level core.LogLevel) zapcore.Level {
	switch level {
	case core.LogLevelDebug:
		return zap.DebugLevel
	case core.LogLevelWarn:
		return zap.WarnLevel
	case core.LogLevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) core.LogLevel {
	switch {
	case level <= zap.DebugLevel:
		return core.LogLevelDebug
	case level == zap.InfoLevel:
		return core.LogLevelInfo
	case level == zap.WarnLevel:
		return core.LogLevelWarn
	default:
		return core.LogLevelError
	}
}

// SetLevel changes the minimum level at runtime, including for child loggers
func (l *ZapLogger) SetLevel(level core.LogLevel) {
	l.level.SetLevel(toZapLevel(level))
}

// GetLevel gets the current log level
func (l *ZapLogger) GetLevel() core.LogLevel {
	return fromZapLevel(l.level.Level())
}

// With returns a child logger carrying fields on every message
func (l *ZapLogger) With(fields map[string]any) core.Logger {
	return newZapLogger(l.logger.With(mapToZapFields(fields)...), l.level)
}

// mapToZapFields converts a map of fields to zap fields
func mapToZapFields(fields map[string]any) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			zapFields = append(zapFields, zap.NamedError(k, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}

// Debug logs debug messages
func (l *ZapLogger) Debug(message string, fields map[string]any) {
	l.logger.Debug(message, mapToZapFields(fields)...)
}

// Info logs informational messages
func (l *ZapLogger) Info(message string, fields map[string]any) {
	l.logger.Info(message, mapToZapFields(fields)...)
}

// Warn logs warning messages
func (l *ZapLogger) Warn(message string, fields map[string]any) {
	l.logger.Warn(message, mapToZapFields(fields)...)
}

// Error logs error messages
func (l *ZapLogger) Error(message string, fields map[string]any) {
	l.logger.Error(message, mapToZapFields(fields)...)
}

// Flush ensures all buffered logs are written
func (l *ZapLogger) Flush() error {
	return l.logger.Sync()
}
