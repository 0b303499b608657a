package logging

import (
	"context"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
)

// DefaultViewEntries is how many entries View returns when no limit is given
const DefaultViewEntries = 100

// ViewFilter narrows the persisted list for display
type ViewFilter struct {
	// Levels keeps only entries at these levels; empty keeps all
	Levels []entity.LogLevel
	// MaxEntries keeps only the newest entries after level filtering
	MaxEntries int
}

// View returns the persisted entries matching filter, oldest first.
// It never writes to the store, so expired entries stay visible until the next log call.
func (s *Service) View(ctx context.Context, filter ViewFilter) ([]entity.LogEntry, error) {
	entries, err := s.GetLogs(ctx)
	if err != nil {
		return nil, err
	}

	if len(filter.Levels) > 0 {
		allowed := make(map[entity.LogLevel]struct{}, len(filter.Levels))
		for _, l := range filter.Levels {
			allowed[l] = struct{}{}
		}

		matched := make([]entity.LogEntry, 0, len(entries))
		for _, e := range entries {
			if _, ok := allowed[e.Level]; ok {
				matched = append(matched, e)
			}
		}
		entries = matched
	}

	limit := filter.MaxEntries
	if limit <= 0 {
		limit = DefaultViewEntries
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
