package model

import (
	"time"
)

// KVEntry is one key-value pair persisted on behalf of the log store
type KVEntry struct {
	Key       string     `gorm:"type:varchar(255);primaryKey"`
	Value     []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the key-value model
func (KVEntry) TableName() string {
	return "kv_entries"
}

// IsExpired reports whether the entry has an expiry at or before now
func (e *KVEntry) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}
