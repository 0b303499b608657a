package repository

import (
	"context"
	"errors"
	"strings"
)

// StoreErrorClass groups driver errors by how the key-value store reacts to them
type StoreErrorClass string

const (
	// ClassBusy is lock contention on the kv_entries table; writes are retried
	ClassBusy StoreErrorClass = "busy"
	// ClassUnavailable means the database cannot be reached; surfaced at once
	ClassUnavailable StoreErrorClass = "unavailable"
	// ClassRejected is anything the database refused for this statement
	ClassRejected StoreErrorClass = "rejected"
)

var busyMarkers = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"deadlock detected",
	"could not serialize access",
	"lock timeout",
}

var unavailableMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"server closed",
	"database is closed",
	"no connection",
	"dial tcp",
	"i/o timeout",
	"eof",
}

// classifyStoreError sorts a raw driver error for the retry decision
func classifyStoreError(err error) StoreErrorClass {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassUnavailable
	}

	msg := strings.ToLower(err.Error())
	for _, m := range busyMarkers {
		if strings.Contains(msg, m) {
			return ClassBusy
		}
	}
	for _, m := range unavailableMarkers {
		if strings.Contains(msg, m) {
			return ClassUnavailable
		}
	}
	return ClassRejected
}

// Retryable reports whether another attempt at the same write can succeed
func (c StoreErrorClass) Retryable() bool {
	return c == ClassBusy
}
