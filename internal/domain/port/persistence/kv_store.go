package persistence

import (
	"context"
	"time"
)

// KeyValueStore is the persistent key-value collaborator the log store is written to.
// Values are opaque bytes; the logging service stores a JSON array under one key.
type KeyValueStore interface {
	// Get returns the value stored under key, or nil with no error when
	// the key is absent or its expiry has passed
	//
	// Possible errors:
	// - ErrDatabaseConnection: If the backing store cannot be reached
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A positive ttl is an expiry hint; zero means no expiry.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If the backing store cannot be reached
	// - ErrConstraintViolation: If the write is rejected by the store
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
