package error

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidLogLevel = 4001
	CodeInvalidConfig   = 4002
	CodeInvalidRequest  = 4003
	CodeNotFound        = 4040

	// 5xxx - Server errors
	CodeInternalServer      = 5000
	CodeLogStoreUnavailable = 5030
)

// Base error types
var (
	// ErrInvalidLogLevel is returned when a level is not one of debug, info, warn, error
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidConfig is returned when a logger configuration value is out of range
	ErrInvalidConfig = errors.New("invalid logger configuration")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrLogStoreUnavailable is returned when the persisted log store cannot be read or written
	ErrLogStoreUnavailable = errors.New("log store unavailable")

	// ErrCorruptLogStore is returned when the persisted log list cannot be decoded
	ErrCorruptLogStore = errors.New("persisted logs are corrupt")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidLogLevel):
		return CodeInvalidLogLevel
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrLogStoreUnavailable):
		return CodeLogStoreUnavailable
	default:
		return CodeInternalServer
	}
}

// InvalidLevelError reports the level string that failed to parse
type InvalidLevelError struct {
	Level string
}

// Error implements the error interface
func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q: must be one of debug, info, warn, error", e.Level)
}

// Is checks if the target error is an ErrInvalidLogLevel
func (e *InvalidLevelError) Is(target error) bool {
	return target == ErrInvalidLogLevel
}

// NewInvalidLevelError creates a new invalid level error
func NewInvalidLevelError(level string) error {
	return &InvalidLevelError{Level: level}
}

// StoreError represents a failed operation against the persisted log store
type StoreError struct {
	Op  string // get, set, remove, decode
	Key string
	Err error
}

// Error implements the error interface for StoreError
func (e *StoreError) Error() string {
	return fmt.Sprintf("log store %s %q failed: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes every StoreError match ErrLogStoreUnavailable
func (e *StoreError) Is(target error) bool {
	return target == ErrLogStoreUnavailable
}

// LogFields returns a map of fields for structured logging
func (e *StoreError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "store_error",
		"operation":  e.Op,
		"key":        e.Key,
		"error_code": CodeLogStoreUnavailable,
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewStoreError creates a store error for the given operation and key
func NewStoreError(op, key string, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}

// SinkError describes a sink that failed or panicked while handling an entry
type SinkError struct {
	Sink  string
	Cause any
}

// Error implements the error interface
func (e *SinkError) Error() string {
	return fmt.Sprintf("log sink %s failed: %v", e.Sink, e.Cause)
}

// Unwrap returns the cause when it is an error
func (e *SinkError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// LogFields returns a map of fields for structured logging
func (e *SinkError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "sink_error",
		"sink":       e.Sink,
		"error":      fmt.Sprint(e.Cause),
	}
}

// StackError is an error carrying the stack trace of the point where it was wrapped
type StackError struct {
	Err   error
	stack string
}

// Error implements the error interface
func (e *StackError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *StackError) Unwrap() error {
	return e.Err
}

// Stack returns the captured stack trace
func (e *StackError) Stack() string {
	return e.stack
}

// WithStack wraps err with the current goroutine's stack. A nil err stays nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	var se *StackError
	if errors.As(err, &se) {
		return err
	}
	return &StackError{Err: err, stack: string(debug.Stack())}
}

// IsStoreError checks if the error came from the persisted log store
func IsStoreError(err error) bool {
	return errors.Is(err, ErrLogStoreUnavailable)
}

// IsInvalidLevelError checks if the error is an invalid level error
func IsInvalidLevelError(err error) bool {
	return errors.Is(err, ErrInvalidLogLevel)
}

// IsNotFoundError checks if the error is a "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
