package storage

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/port/persistence"
)

// DefaultPrefix namespaces every key written by the application
const DefaultPrefix = "health_"

// NamespacedStore prefixes keys before handing them to the wrapped store
type NamespacedStore struct {
	next   persistence.KeyValueStore
	prefix string
}

var _ persistence.KeyValueStore = (*NamespacedStore)(nil)

// NewNamespacedStore wraps next so that key k is stored as prefix+k
func NewNamespacedStore(next persistence.KeyValueStore, prefix string) *NamespacedStore {
	return &NamespacedStore{next: next, prefix: prefix}
}

// Key returns the key as seen by the wrapped store
func (s *NamespacedStore) Key(key string) string {
	return s.prefix + key
}

func (s *NamespacedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.next.Get(ctx, s.Key(key))
}

func (s *NamespacedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.next.Set(ctx, s.Key(key), value, ttl)
}

func (s *NamespacedStore) Remove(ctx context.Context, key string) error {
	return s.next.Remove(ctx, s.Key(key))
}
