package error

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBaseErrorTypes(t *testing.T) {
	if ErrInvalidLogLevel.Error() != "invalid log level" {
		t.Errorf("ErrInvalidLogLevel has unexpected message: %s", ErrInvalidLogLevel.Error())
	}
	if ErrLogStoreUnavailable.Error() != "log store unavailable" {
		t.Errorf("ErrLogStoreUnavailable has unexpected message: %s", ErrLogStoreUnavailable.Error())
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InvalidLogLevel", ErrInvalidLogLevel, 4001},
		{"InvalidLevelError", NewInvalidLevelError("loud"), 4001},
		{"InvalidConfig", ErrInvalidConfig, 4002},
		{"InvalidRequest", ErrInvalidRequest, 4003},
		{"NotFound", ErrNotFound, 4040},
		{"StoreUnavailable", ErrLogStoreUnavailable, 5030},
		{"StoreError", NewStoreError("get", "logs", errors.New("boom")), 5030},
		{"UnknownError", errors.New("unknown error"), 5000},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrInvalidConfig), 4002},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestInvalidLevelError(t *testing.T) {
	err := NewInvalidLevelError("verbose")

	expectedErrMsg := `invalid log level "verbose": must be one of debug, info, warn, error`
	if err.Error() != expectedErrMsg {
		t.Errorf("InvalidLevelError.Error() = %s, want %s", err.Error(), expectedErrMsg)
	}

	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("errors.Is(err, ErrInvalidLogLevel) = false, want true")
	}
	if !IsInvalidLevelError(fmt.Errorf("config: %w", err)) {
		t.Errorf("IsInvalidLevelError(wrapped) = false, want true")
	}

	var levelErr *InvalidLevelError
	if !errors.As(err, &levelErr) || levelErr.Level != "verbose" {
		t.Errorf("errors.As did not recover the level, got %+v", levelErr)
	}
}

func TestStoreError(t *testing.T) {
	baseErr := errors.New("connection refused")
	err := NewStoreError("set", "health_logs", baseErr)

	expectedErrMsg := `log store set "health_logs" failed: connection refused`
	if err.Error() != expectedErrMsg {
		t.Errorf("StoreError.Error() = %s, want %s", err.Error(), expectedErrMsg)
	}

	if !errors.Is(err, ErrLogStoreUnavailable) {
		t.Errorf("errors.Is(err, ErrLogStoreUnavailable) = false, want true")
	}
	if !errors.Is(err, baseErr) {
		t.Errorf("errors.Is(err, baseErr) = false, want true")
	}
	if !IsStoreError(err) {
		t.Errorf("IsStoreError(err) = false, want true")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("errors.As failed: not a *StoreError")
	}
	fields := storeErr.LogFields()
	if fields["operation"] != "set" || fields["key"] != "health_logs" {
		t.Errorf("LogFields() = %v, missing operation or key", fields)
	}
	if fields["error"] != "connection refused" {
		t.Errorf("LogFields()[error] = %v, want connection refused", fields["error"])
	}
	if fields["error_code"] != CodeLogStoreUnavailable {
		t.Errorf("LogFields()[error_code] = %v, want %d", fields["error_code"], CodeLogStoreUnavailable)
	}
}

func TestSinkError(t *testing.T) {
	cause := errors.New("handler exploded")
	err := &SinkError{Sink: "custom", Cause: cause}

	if err.Error() != "log sink custom failed: handler exploded" {
		t.Errorf("SinkError.Error() = %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}

	panicErr := &SinkError{Sink: "console", Cause: "nil map write"}
	if panicErr.Unwrap() != nil {
		t.Errorf("Unwrap() of a non-error cause = %v, want nil", panicErr.Unwrap())
	}
	if panicErr.LogFields()["error"] != "nil map write" {
		t.Errorf("LogFields()[error] = %v, want nil map write", panicErr.LogFields()["error"])
	}
}

func TestWithStack(t *testing.T) {
	if WithStack(nil) != nil {
		t.Errorf("WithStack(nil) should be nil")
	}

	baseErr := errors.New("disk full")
	err := WithStack(baseErr)

	if err.Error() != "disk full" {
		t.Errorf("Error() = %s, want disk full", err.Error())
	}
	if !errors.Is(err, baseErr) {
		t.Errorf("errors.Is(err, baseErr) = false, want true")
	}

	stacker, ok := err.(interface{ Stack() string })
	if !ok {
		t.Fatalf("WithStack result does not expose Stack()")
	}
	if !strings.Contains(stacker.Stack(), "TestWithStack") {
		t.Errorf("Stack() does not mention the calling test:\n%s", stacker.Stack())
	}

	// Wrapping twice keeps the first stack
	again := WithStack(err)
	if again != err {
		t.Errorf("WithStack on a stacked error should return it unchanged")
	}
}

func TestErrorHelperFunctions(t *testing.T) {
	if IsStoreError(ErrInvalidConfig) {
		t.Errorf("IsStoreError(ErrInvalidConfig) = true, want false")
	}
	if IsInvalidLevelError(ErrLogStoreUnavailable) {
		t.Errorf("IsInvalidLevelError(ErrLogStoreUnavailable) = true, want false")
	}
	if !IsNotFoundError(fmt.Errorf("wrapped: %w", ErrNotFound)) {
		t.Errorf("IsNotFoundError(wrapped) = false, want true")
	}
}
