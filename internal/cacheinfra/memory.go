// Package cacheinfra holds the concrete cache backends behind the
// cache.Cache interface: Redis for shared deployments, an in-process
// sturdyc cache for local runs and tests.
package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the settings for the in-process cache.
type Config struct {
	// Capacity is the maximum number of entries. Must be greater than 0.
	Capacity int

	// NumShards controls concurrent access. Higher values improve
	// concurrency at a memory cost. Must be greater than 0.
	NumShards int

	// TTL is the client-wide time-to-live. sturdyc expires per client,
	// not per entry, so this must be at least as long as the longest TTL
	// callers will request; shorter per-entry TTLs are enforced by the
	// adapter with a stored deadline. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage is what share of entries to evict when the
	// cache is full. Must be between 1 and 100.
	EvictionPercentage int
}

// DefaultConfig returns settings sized for a single-process deployment.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryCache implements cache.Cache on a sturdyc client. Missing-record
// storage stays off: absent documents are deliberately not negative-cached.
type MemoryCache struct {
	client *sturdyc.Client[entry]
}

// NewMemoryCache validates cfg and builds the in-process cache.
func NewMemoryCache(cfg Config) (*MemoryCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[entry](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &MemoryCache{client: client}, nil
}

// Get returns the stored value, treating entries past their per-entry
// deadline as absent even if sturdyc has not evicted them yet.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := m.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		m.client.Delete(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key. A non-positive ttl stores the entry for the
// client-wide TTL.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.client.Set(key, e)
	return nil
}
