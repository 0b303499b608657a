package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/health-logger/internal/domain/error"
)

// applyRetention enforces the store bounds on a list that already holds the
// newest entry: first the newest maxEntries are kept, then every entry whose
// age at nowMs reaches ttl is dropped.
func applyRetention(entries []entity.LogEntry, maxEntries int, ttl time.Duration, nowMs int64) []entity.LogEntry {
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	ttlMs := ttl.Milliseconds()
	kept := make([]entity.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Age(nowMs) < ttlMs {
			kept = append(kept, e)
		}
	}
	return kept
}

// persist appends entry to the stored list as one read-modify-write.
// Failures are reported on the diagnostic logger and never reach the caller.
func (s *Service) persist(entry entity.LogEntry, cfg entity.LoggerConfig) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	ctx, cancel := s.timeProvider.WithTimeout(context.Background(), s.storageTimeout)
	defer cancel()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		s.logger.Warn("Reading persisted logs failed, starting from an empty list", storeFields(err))
		entries = nil
	}

	entries = append(entries, storable(entry))
	entries = applyRetention(entries, cfg.MaxStorageEntries, cfg.StorageTTL, entry.Timestamp)

	raw, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn("Encoding persisted logs failed, entry dropped", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if err := s.store.Set(ctx, StorageKey, raw, cfg.StorageTTL); err != nil {
		s.logger.Warn("Writing persisted logs failed, entry dropped", storeFields(storeError("set", err)))
	}
}

// loadEntries reads and decodes the stored list. An absent key is an empty list.
func (s *Service) loadEntries(ctx context.Context) ([]entity.LogEntry, error) {
	raw, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, storeError("get", err)
	}
	if len(raw) == 0 {
		return []entity.LogEntry{}, nil
	}

	var entries []entity.LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, storeError("decode", fmt.Errorf("%w: %v", errs.ErrCorruptLogStore, err))
	}
	if entries == nil {
		entries = []entity.LogEntry{}
	}
	return entries, nil
}

// storable prepares entry for the persisted list. Errors are recorded by
// their text and data that cannot be encoded is replaced with its printed
// form, so one bad payload cannot poison the whole list.
func storable(entry entity.LogEntry) entity.LogEntry {
	switch v := entry.Data.(type) {
	case nil:
		return entry
	case error:
		entry.Data = v.Error()
		return entry
	case []any:
		entry.Data = errorsAsText(v)
	}
	if _, err := json.Marshal(entry.Data); err != nil {
		entry.Data = fmt.Sprintf("%+v", entry.Data)
	}
	return entry
}

// errorsAsText returns values with every error replaced by its text.
// values itself is left untouched.
func errorsAsText(values []any) []any {
	var out []any
	for i, v := range values {
		err, ok := v.(error)
		if !ok || err == nil {
			continue
		}
		if out == nil {
			out = make([]any, len(values))
			copy(out, values)
		}
		out[i] = err.Error()
	}
	if out == nil {
		return values
	}
	return out
}

func storeError(op string, err error) error {
	return errs.NewStoreError(op, StorageKey, err)
}

func storeFields(err error) map[string]any {
	if se, ok := err.(*errs.StoreError); ok {
		return se.LogFields()
	}
	return map[string]any{"error": err.Error()}
}
