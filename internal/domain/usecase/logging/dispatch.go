package logging

import (
	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/health-logger/internal/domain/error"
)

const (
	sinkConsole = "console"
	sinkStorage = "storage"
	sinkCustom  = "custom"
)

// dispatch hands entry to each enabled sink in a fixed order. A sink that
// panics is reported and skipped; the remaining sinks still run.
func (s *Service) dispatch(entry entity.LogEntry, cfg entity.LoggerConfig) {
	if cfg.EnableConsole && s.console != nil {
		s.guard(sinkConsole, func() { s.console.Write(entry) })
	}

	if cfg.EnableStorage && s.store != nil {
		s.guard(sinkStorage, func() { s.persist(entry, cfg) })
	}

	if cfg.CustomHandler != nil {
		s.guard(sinkCustom, func() { cfg.CustomHandler(entry) })
	}
}

func (s *Service) guard(sink string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			sinkErr := &errs.SinkError{Sink: sink, Cause: r}
			s.logger.Error("Log sink failed", sinkErr.LogFields())
		}
	}()
	fn()
}
