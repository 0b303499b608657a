package core

import (
	"context"
	"time"
)

// TimeProvider abstracts the clock so entry timestamps and eviction can be tested
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
	WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc)
}
