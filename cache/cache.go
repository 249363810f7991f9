package cache

import (
	"context"
	"time"
)

// Cache is the contract the read path expects from a key-value store.
// It is deliberately narrow: the cache-aside repository only ever does
// point gets and TTL-bounded sets.
//
// Get returns (nil, false, nil) when the key is absent or expired.
// Implementations must treat backend failures on Get as errors, not as
// misses; the caller decides how to degrade.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
