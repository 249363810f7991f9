package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/filmoteka/searchsync/search"
)

// Loader ensures target index collections exist and bulk-upserts
// transformed documents into them.
type Loader struct {
	storage search.Storage
	logger  *slog.Logger
}

// NewLoader builds a Loader. A nil logger falls back to slog.Default.
func NewLoader(storage search.Storage, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{storage: storage, logger: logger}
}

// EnsureIndex creates the index from schema when it does not exist yet.
// An already-present index is logged and skipped; schemas are never
// applied to existing indices.
func (l *Loader) EnsureIndex(ctx context.Context, index string, schema json.RawMessage) error {
	exists, err := l.storage.Exists(ctx, index)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	if exists {
		l.logger.Info("index already exists", "index", index)
		return nil
	}

	if err := l.storage.CreateIndex(ctx, index, schema); err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	l.logger.Info("index created", "index", index)
	return nil
}

// Load submits docs as one bulk upsert. Per-document failures are logged
// with their ids and reasons and surface as an error; the caller decides
// whether the partitioned outcome warrants a retry of the failed subset.
func (l *Loader) Load(ctx context.Context, index string, docs []search.Document) (search.BulkResult, error) {
	if len(docs) == 0 {
		l.logger.Info("nothing to load", "index", index)
		return search.BulkResult{}, nil
	}

	result, err := l.storage.Bulk(ctx, index, docs)
	if err != nil {
		l.logger.Error("bulk load failed", "index", index, "error", err)
		return result, fmt.Errorf("bulk load into %s: %w", index, err)
	}

	if len(result.Failed) > 0 {
		for _, f := range result.Failed {
			l.logger.Error("document rejected", "index", index, "id", f.ID, "reason", f.Reason)
		}
		return result, fmt.Errorf("bulk load into %s: %d of %d documents rejected", index, len(result.Failed), len(docs))
	}

	l.logger.Info("documents loaded", "index", index, "count", result.Indexed)
	return result, nil
}

// Documents converts typed documents into bulk actions keyed by each
// document's own id.
func Documents[T interface{ DocumentID() string }](items []T) ([]search.Document, error) {
	docs := make([]search.Document, 0, len(items))
	for _, item := range items {
		source, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("marshal document %s: %w", item.DocumentID(), err)
		}
		docs = append(docs, search.Document{ID: item.DocumentID(), Source: source})
	}
	return docs, nil
}
