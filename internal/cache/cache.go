// Package cache provides the TTL key-value port used for cache-aside reads
// and the event cooldown gate. No cached value is authoritative: every key
// must be recomputable from the store, and callers treat failures as misses.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Exists reports key presence without fetching the value.
	Exists(ctx context.Context, key string) (bool, error)
}
