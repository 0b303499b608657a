package database

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
)

// DefaultSlowQueryThreshold is used when a collector is created without one
const DefaultSlowQueryThreshold = 100 * time.Millisecond

// QueryMetrics holds metrics about a database query
type QueryMetrics struct {
	Operation    string
	Duration     time.Duration
	RowsAffected int64
	Failed       bool
	ErrorMessage string
}

// OperationStats aggregates the queries measured for one operation
type OperationStats struct {
	Count         int64
	Failures      int64
	SlowQueries   int64
	TotalDuration time.Duration
}

// MetricsCollector measures database operations and keeps per-operation totals
type MetricsCollector struct {
	logger        coreport.Logger
	timeProvider  coreport.TimeProvider
	slowThreshold time.Duration

	mu    sync.Mutex
	stats map[string]OperationStats
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider, slowThreshold time.Duration) *MetricsCollector {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}
	return &MetricsCollector{
		logger:        logger,
		timeProvider:  timeProvider,
		slowThreshold: slowThreshold,
		stats:         make(map[string]OperationStats),
	}
}

// MeasureQuery times fn and records the outcome under operation. The error
// returned by fn is passed through unchanged.
func (c *MetricsCollector) MeasureQuery(ctx context.Context, operation string, fn func() (int64, error)) (*QueryMetrics, error) {
	start := c.timeProvider.Now()

	rowsAffected, err := fn()

	metrics := &QueryMetrics{
		Operation:    operation,
		Duration:     c.timeProvider.Since(start),
		RowsAffected: rowsAffected,
		Failed:       err != nil,
	}
	if err != nil {
		metrics.ErrorMessage = err.Error()
	}

	slow := metrics.Duration > c.slowThreshold
	c.record(metrics, slow)

	if slow {
		c.logger.Warn("Slow database query detected", map[string]any{
			"operation":     operation,
			"duration_ms":   metrics.Duration.Milliseconds(),
			"rows_affected": rowsAffected,
			"failed":        metrics.Failed,
			"error_message": metrics.ErrorMessage,
		})
	}

	return metrics, err
}

// Stats returns a copy of the per-operation totals
func (c *MetricsCollector) Stats() map[string]OperationStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]OperationStats, len(c.stats))
	for op, s := range c.stats {
		out[op] = s
	}
	return out
}

func (c *MetricsCollector) record(m *QueryMetrics, slow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats[m.Operation]
	s.Count++
	s.TotalDuration += m.Duration
	if m.Failed {
		s.Failures++
	}
	if slow {
		s.SlowQueries++
	}
	c.stats[m.Operation] = s
}
