package storage

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/port/core"
	"github.com/amirhossein-jamali/health-logger/internal/domain/port/persistence"
)

// Meta is the bookkeeping kept alongside every stored value
type Meta struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	// ExpiredAt is zero for values without a TTL
	ExpiredAt time.Time
}

// Item is a stored value and its metadata
type Item struct {
	Data []byte
	Meta Meta
}

func (i Item) expired(now time.Time) bool {
	return !i.Meta.ExpiredAt.IsZero() && !now.Before(i.Meta.ExpiredAt)
}

// MemoryStore is a process-local KeyValueStore. Expired items read as absent
// and are removed on that read.
type MemoryStore struct {
	mu           sync.Mutex
	items        map[string]Item
	timeProvider core.TimeProvider
}

var _ persistence.KeyValueStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(timeProvider core.TimeProvider) *MemoryStore {
	return &MemoryStore{
		items:        make(map[string]Item),
		timeProvider: timeProvider,
	}
}

// Get returns a copy of the value under key, or nil when absent or expired
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if item.expired(s.timeProvider.Now()) {
		delete(s.items, key)
		return nil, nil
	}
	return append([]byte(nil), item.Data...), nil
}

// Set stores a copy of value. CreatedAt survives overwrites of a live item.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeProvider.Now()
	meta := Meta{CreatedAt: now, UpdatedAt: now}
	if prev, ok := s.items[key]; ok && !prev.expired(now) {
		meta.CreatedAt = prev.Meta.CreatedAt
	}
	if ttl > 0 {
		meta.ExpiredAt = now.Add(ttl)
	}

	s.items[key] = Item{Data: append([]byte(nil), value...), Meta: meta}
	return nil
}

// Remove deletes key
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Meta returns the metadata of a live item
func (s *MemoryStore) Meta(key string) (Meta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok || item.expired(s.timeProvider.Now()) {
		return Meta{}, false
	}
	return item.Meta, true
}

// Len returns the number of items held, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
