// Package search defines the narrow contract the system expects from a
// document search engine. The core never talks to a concrete engine
// directly; the Elasticsearch implementation lives in internal/esinfra.
package search

import (
	"context"
	"encoding/json"
)

// Document is one bulk-upsert action payload: the target document id and
// its serialized source body.
type Document struct {
	ID     string
	Source json.RawMessage
}

// FailedDocument records a single document the engine rejected during a
// bulk write, with the engine-reported reason.
type FailedDocument struct {
	ID     string
	Reason string
}

// BulkResult partitions the outcome of a bulk write so callers can tell
// exactly which documents made it and which did not.
type BulkResult struct {
	Indexed int
	Failed  []FailedDocument
}

// Storage is the search engine contract consumed by the ETL loader and
// the cache-aside repository.
//
// Get returns (nil, false, nil) when the index has no such document.
// Search returns the ranked hit sources; an empty slice means the query
// matched nothing. Bulk inserts or replaces documents by id in one round
// trip; per-document failures are reported in the result, transport
// failures as an error.
type Storage interface {
	Exists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, index string, schema json.RawMessage) error
	Get(ctx context.Context, index, id string) (json.RawMessage, bool, error)
	Search(ctx context.Context, index string, body any) ([]json.RawMessage, error)
	Bulk(ctx context.Context, index string, docs []Document) (BulkResult, error)
}
