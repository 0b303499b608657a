package logging

import (
	"errors"
	"runtime/debug"
)

type stackTracer interface {
	Stack() string
}

// collectData turns variadic call data into the entry's data field:
// nothing becomes nil, one value is kept as is, several become a slice.
func collectData(data []any) any {
	switch len(data) {
	case 0:
		return nil
	case 1:
		return data[0]
	default:
		out := make([]any, len(data))
		copy(out, data)
		return out
	}
}

// errorPayload prepares the data and stack of an error-level call. An error
// argument stays in the data as is; its own stack is preferred, otherwise
// the stack of the current goroutine is captured.
func errorPayload(args []any) (any, string) {
	if len(args) == 0 {
		return nil, ""
	}

	err, ok := args[0].(error)
	if !ok || err == nil {
		return collectData(args), ""
	}

	var tracer stackTracer
	if errors.As(err, &tracer) {
		return collectData(args), tracer.Stack()
	}
	return collectData(args), string(debug.Stack())
}
