// Package esinfra implements the search.Storage contract on
// Elasticsearch.
package esinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/filmoteka/searchsync/search"
)

// Storage adapts an Elasticsearch client to search.Storage. The client is
// long-lived and safe for concurrent use.
type Storage struct {
	es *elasticsearch.Client
}

// New connects to the cluster at the given addresses.
func New(addresses []string) (*Storage, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Storage{es: es}, nil
}

// NewWithClient wraps an already-configured client.
func NewWithClient(es *elasticsearch.Client) *Storage {
	return &Storage{es: es}
}

// Exists reports whether the index is present.
func (s *Storage) Exists(ctx context.Context, index string) (bool, error) {
	res, err := s.es.Indices.Exists([]string{index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("indices exists %s: %w", index, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("indices exists %s: %s", index, res.String())
	}
}

// CreateIndex creates the index with the given schema blob.
func (s *Storage) CreateIndex(ctx context.Context, index string, schema json.RawMessage) error {
	res, err := s.es.Indices.Create(index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(bytes.NewReader(schema)),
	)
	if err != nil {
		return fmt.Errorf("indices create %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indices create %s: %s", index, res.String())
	}
	return nil
}

// Get fetches one document by id. A 404 maps to absent.
func (s *Storage) Get(ctx context.Context, index, id string) (json.RawMessage, bool, error) {
	res, err := s.es.Get(index, id, s.es.Get.WithContext(ctx))
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if res.IsError() {
		return nil, false, fmt.Errorf("get %s/%s: %s", index, id, res.String())
	}

	var envelope struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, false, fmt.Errorf("decode get response for %s/%s: %w", index, id, err)
	}
	return envelope.Source, true, nil
}

// Search runs the query body against the index and returns the ranked
// hit sources.
func (s *Storage) Search(ctx context.Context, index string, body any) ([]json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.String())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response for %s: %w", index, err)
	}

	sources := make([]json.RawMessage, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}

// Bulk upserts docs into the index in one bulk operation and partitions
// the outcome into indexed and failed documents.
func (s *Storage) Bulk(ctx context.Context, index string, docs []search.Document) (search.BulkResult, error) {
	// One worker keeps the batch a single ordered bulk request.
	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     s.es,
		Index:      index,
		NumWorkers: 1,
	})
	if err != nil {
		return search.BulkResult{}, fmt.Errorf("bulk indexer for %s: %w", index, err)
	}

	var (
		mu     sync.Mutex
		failed []search.FailedDocument
	)

	for _, doc := range docs {
		item := esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(doc.Source),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				reason := res.Error.Reason
				if err != nil {
					reason = err.Error()
				}
				mu.Lock()
				failed = append(failed, search.FailedDocument{ID: item.DocumentID, Reason: reason})
				mu.Unlock()
			},
		}
		if err := indexer.Add(ctx, item); err != nil {
			_ = indexer.Close(ctx)
			return search.BulkResult{}, fmt.Errorf("enqueue bulk item %s: %w", doc.ID, err)
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return search.BulkResult{}, fmt.Errorf("flush bulk into %s: %w", index, err)
	}

	return search.BulkResult{
		Indexed: len(docs) - len(failed),
		Failed:  failed,
	}, nil
}
