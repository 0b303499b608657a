package dto

import (
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
)

// LogEntryResponse is one persisted entry as returned by the viewer
type LogEntryResponse struct {
	Timestamp int64  `json:"timestamp"`
	Time      string `json:"time"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Stack     string `json:"stack,omitempty"`
	Source    string `json:"source,omitempty"`
}

// LogsResponse wraps a list of entries
type LogsResponse struct {
	Entries []LogEntryResponse `json:"entries"`
	Count   int                `json:"count"`
}

// IngestLogRequest asks the service to log one message
type IngestLogRequest struct {
	Level   string `json:"level" binding:"required"`
	Message string `json:"message" binding:"required"`
	Data    any    `json:"data"`
}

// IngestLogResponse reports whether the message passed the level threshold
type IngestLogResponse struct {
	Accepted bool   `json:"accepted"`
	Level    string `json:"level"`
}

// NewLogEntryResponse converts an entry for the API
func NewLogEntryResponse(e entity.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		Timestamp: e.Timestamp,
		Time:      time.UnixMilli(e.Timestamp).UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     string(e.Level),
		Message:   e.Message,
		Data:      e.Data,
		Stack:     e.Stack,
		Source:    e.Source,
	}
}

// NewLogsResponse converts a list of entries for the API
func NewLogsResponse(entries []entity.LogEntry) LogsResponse {
	out := make([]LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewLogEntryResponse(e))
	}
	return LogsResponse{Entries: out, Count: len(out)}
}
