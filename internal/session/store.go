// ABOUTME: TTL key-value store contract shared by the session and profile caches
// ABOUTME: Implementations are swappable: in-memory for development, SQLite for persistence

package session

import (
	"context"
	"time"
)

// Store is a TTL-keyed string store. Save always overwrites; expired entries
// behave exactly like absent ones.
type Store interface {
	// Get returns the value for key and whether a live entry exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Save stores value under key with the given time-to-live.
	Save(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
