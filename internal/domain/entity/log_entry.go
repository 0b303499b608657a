package entity

import (
	"strings"

	errs "github.com/amirhossein-jamali/health-logger/internal/domain/error"
)

// LogLevel is the severity of a log entry
type LogLevel string

const (
	// LevelDebug for detailed debug information
	LevelDebug LogLevel = "debug"
	// LevelInfo for general operational information
	LevelInfo LogLevel = "info"
	// LevelWarn for warnings
	LevelWarn LogLevel = "warn"
	// LevelError for errors
	LevelError LogLevel = "error"
)

// UnknownSource is recorded when the call site cannot be resolved
const UnknownSource = "unknown"

var levelOrder = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Levels returns all levels in ascending severity
func Levels() []LogLevel {
	return []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// Order returns the numeric rank of the level, or -1 for an unknown level
func (l LogLevel) Order() int {
	if o, ok := levelOrder[l]; ok {
		return o
	}
	return -1
}

// IsValid reports whether l is one of the four known levels
func (l LogLevel) IsValid() bool {
	return l.Order() >= 0
}

// Enabled reports whether a call at level l passes a threshold
func (l LogLevel) Enabled(threshold LogLevel) bool {
	return l.Order() >= threshold.Order()
}

// Upper returns the level in upper case, as shown on the console
func (l LogLevel) Upper() string {
	return strings.ToUpper(string(l))
}

// ParseLogLevel converts a string such as "WARN" or "warning" to a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", errs.NewInvalidLevelError(s)
	}
}

// LogEntry is one accepted log call. It is never modified after construction.
type LogEntry struct {
	Timestamp int64    `json:"timestamp"` // milliseconds since epoch
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
	Data      any      `json:"data,omitempty"`
	Stack     string   `json:"stack,omitempty"`
	Source    string   `json:"source,omitempty"`
}

// Age returns how old the entry is at nowMs, in milliseconds
func (e LogEntry) Age(nowMs int64) int64 {
	return nowMs - e.Timestamp
}
