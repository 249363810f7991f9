// Package repository implements the generic cache-aside read path: point
// lookups and searches against the index, fronted by a key-value cache.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/filmoteka/searchsync/cache"
	"github.com/filmoteka/searchsync/search"
)

// DefaultTTL is how long cached documents stay fresh.
const DefaultTTL = 180 * time.Second

// Repository serves typed reads for one document shape. It owns no state
// of its own: the cache and index are shared, long-lived collaborators,
// and the repository itself is safe for concurrent use.
//
// The index is the source of truth. Cache population is best-effort; a
// failing cache degrades every lookup to a miss but never fails a read.
type Repository[T any] struct {
	cache   cache.Cache
	storage search.Storage
	ttl     time.Duration
	logger  *slog.Logger
}

// New builds a repository for document type T. A non-positive ttl falls
// back to DefaultTTL; a nil logger falls back to slog.Default.
func New[T any](c cache.Cache, storage search.Storage, ttl time.Duration, logger *slog.Logger) *Repository[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository[T]{cache: c, storage: storage, ttl: ttl, logger: logger}
}

// GetByID returns the document with the given id, or found=false when
// neither the cache nor the index has it. Absence is an outcome, not an
// error; errors are reserved for transport failures on the index side.
func (r *Repository[T]) GetByID(ctx context.Context, index, id string) (T, bool, error) {
	var zero T
	key := cache.PointKey(index, id)

	if data, ok := r.cacheGet(ctx, key); ok {
		var doc T
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc, true, nil
		}
		r.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	raw, found, err := r.storage.Get(ctx, index, id)
	if err != nil {
		return zero, false, fmt.Errorf("get %s/%s: %w", index, id, err)
	}
	if !found {
		return zero, false, nil
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, false, fmt.Errorf("decode %s/%s: %w", index, id, err)
	}

	r.cacheSet(ctx, key, raw)
	return doc, true, nil
}

// GetBySearch runs body against the index and returns the typed hits, or
// found=false when the query matches nothing. Empty result sets are not
// cached, so consistently-empty queries re-hit the index every time.
func (r *Repository[T]) GetBySearch(ctx context.Context, index string, body any) ([]T, bool, error) {
	key, err := cache.SearchKey(index, body)
	if err != nil {
		return nil, false, err
	}

	if data, ok := r.cacheGet(ctx, key); ok {
		var docs []T
		if err := json.Unmarshal(data, &docs); err == nil {
			return docs, true, nil
		}
		r.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	hits, err := r.storage.Search(ctx, index, body)
	if err != nil {
		return nil, false, fmt.Errorf("search %s: %w", index, err)
	}
	if len(hits) == 0 {
		return nil, false, nil
	}

	docs := make([]T, 0, len(hits))
	for _, hit := range hits {
		var doc T
		if err := json.Unmarshal(hit, &doc); err != nil {
			return nil, false, fmt.Errorf("decode search hit in %s: %w", index, err)
		}
		docs = append(docs, doc)
	}

	if payload, err := json.Marshal(docs); err == nil {
		r.cacheSet(ctx, key, payload)
	}
	return docs, true, nil
}

// cacheGet treats every cache failure as a miss.
func (r *Repository[T]) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

// cacheSet populates the cache without ever failing the read path.
func (r *Repository[T]) cacheSet(ctx context.Context, key string, value []byte) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warn("cache set failed", "key", key, "error", err)
	}
}
