package logger

import (
	"io"
	"os"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// consoleTimeLayout renders timestamps as ISO-8601 UTC with milliseconds
const consoleTimeLayout = "2006-01-02T15:04:05.000Z"

// ConsoleSinkOptions configures where the diagnostic stream is written
type ConsoleSinkOptions struct {
	// File switches output from stdout to a rotating file
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// IncludeSource appends the entry's call site after its data
	IncludeSource bool
}

// ConsoleSink writes entries as "[timestamp] [LEVEL] message {data}" lines.
// Error entries carrying a stack get it on the following lines.
type ConsoleSink struct {
	core          zapcore.Core
	closer        io.Closer
	includeSource bool
}

// NewConsoleSink creates a sink writing to stdout or, with opts.File, to a rotating file
func NewConsoleSink(opts ConsoleSinkOptions) *ConsoleSink {
	if opts.File == "" {
		return NewConsoleSinkWithWriter(zapcore.Lock(os.Stdout), opts.IncludeSource)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	sink := NewConsoleSinkWithWriter(zapcore.AddSync(rotator), opts.IncludeSource)
	sink.closer = rotator
	return sink
}

// NewConsoleSinkWithWriter creates a sink writing to w
func NewConsoleSinkWithWriter(w io.Writer, includeSource bool) *ConsoleSink {
	encCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "message",
		StacktraceKey:    "stack",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       bracketedTimeEncoder,
		EncodeLevel:      bracketedLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	return &ConsoleSink{
		core:          zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel),
		includeSource: includeSource,
	}
}

func bracketedTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.UTC().Format(consoleTimeLayout) + "]")
}

func bracketedLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

func entryLevel(level entity.LogLevel) zapcore.Level {
	switch level {
	case entity.LevelDebug:
		return zapcore.DebugLevel
	case entity.LevelWarn:
		return zapcore.WarnLevel
	case entity.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Write emits entry. Encoding or write errors are swallowed.
func (s *ConsoleSink) Write(entry entity.LogEntry) {
	ze := zapcore.Entry{
		Level:   entryLevel(entry.Level),
		Time:    time.UnixMilli(entry.Timestamp),
		Message: entry.Message,
		Stack:   entry.Stack,
	}

	fields := make([]zap.Field, 0, 2)
	if entry.Data != nil {
		fields = append(fields, zap.Any("data", entry.Data))
	}
	if s.includeSource && entry.Source != "" {
		fields = append(fields, zap.String("source", entry.Source))
	}

	_ = s.core.Write(ze, fields)
}

// Close flushes and releases the rotating file, if any
func (s *ConsoleSink) Close() error {
	_ = s.core.Sync()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
