package core

import "github.com/amirhossein-jamali/health-logger/internal/domain/entity"

// ConsoleSink is the live diagnostic stream accepted entries are echoed to.
// Write is synchronous and best effort; it reports nothing back.
type ConsoleSink interface {
	Write(entry entity.LogEntry)
}
