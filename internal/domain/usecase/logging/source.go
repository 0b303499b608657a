package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
)

// callerSkip drops runtime.Callers, resolveSource, log and the public wrapper
const callerSkip = 4

// resolveSource names the function that called the public logging method
// as "pkg.Func (file.go:line)". It never fails; anything unexpected yields
// entity.UnknownSource.
func resolveSource() (source string) {
	defer func() {
		if recover() != nil {
			source = entity.UnknownSource
		}
	}()

	var pcs [1]uintptr
	if runtime.Callers(callerSkip, pcs[:]) == 0 {
		return entity.UnknownSource
	}

	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	if frame.Function == "" && frame.File == "" {
		return entity.UnknownSource
	}
	return formatFrame(frame)
}

func formatFrame(frame runtime.Frame) string {
	fn := frame.Function
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	if fn == "" {
		fn = entity.UnknownSource
	}
	if frame.File == "" {
		return fn
	}
	return fmt.Sprintf("%s (%s:%d)", fn, filepath.Base(frame.File), frame.Line)
}
