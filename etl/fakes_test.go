package etl

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/filmoteka/searchsync/search"
)

// fakeStorage is an in-memory search.Storage recording every call.
type fakeStorage struct {
	mu sync.Mutex

	indices   map[string]json.RawMessage
	documents map[string]map[string]json.RawMessage

	existsErr error
	createErr error
	bulkErr   error
	failIDs   map[string]string // document id -> rejection reason

	createCalls []string
	bulkCalls   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		indices:   make(map[string]json.RawMessage),
		documents: make(map[string]map[string]json.RawMessage),
	}
}

func (f *fakeStorage) Exists(ctx context.Context, index string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.indices[index]
	return ok, nil
}

func (f *fakeStorage) CreateIndex(ctx context.Context, index string, schema json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.createCalls = append(f.createCalls, index)
	f.indices[index] = schema
	return nil
}

func (f *fakeStorage) Get(ctx context.Context, index, id string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.documents[index][id]
	return doc, ok, nil
}

func (f *fakeStorage) Search(ctx context.Context, index string, body any) ([]json.RawMessage, error) {
	return nil, nil
}

func (f *fakeStorage) Bulk(ctx context.Context, index string, docs []search.Document) (search.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return search.BulkResult{}, f.bulkErr
	}
	f.bulkCalls = append(f.bulkCalls, index)

	if f.documents[index] == nil {
		f.documents[index] = make(map[string]json.RawMessage)
	}
	var result search.BulkResult
	for _, doc := range docs {
		if reason, bad := f.failIDs[doc.ID]; bad {
			result.Failed = append(result.Failed, search.FailedDocument{ID: doc.ID, Reason: reason})
			continue
		}
		f.documents[index][doc.ID] = doc.Source
		result.Indexed++
	}
	return result, nil
}

// fakeExtractor serves fixed row sets.
type fakeExtractor struct {
	genres      []GenreRow
	persons     []PersonRow
	personFilms []PersonFilmRow
	movies      []MovieRow
	watermark   time.Time

	genresErr error
	moviesErr error

	mu             sync.Mutex
	moviesPersonIDs []string
}

func (f *fakeExtractor) Genres(ctx context.Context) ([]GenreRow, error) {
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres, nil
}

func (f *fakeExtractor) Persons(ctx context.Context) ([]PersonRow, error) {
	return f.persons, nil
}

func (f *fakeExtractor) PersonFilms(ctx context.Context) ([]PersonFilmRow, error) {
	return f.personFilms, nil
}

func (f *fakeExtractor) Movies(ctx context.Context, personIDs []string) ([]MovieRow, error) {
	f.mu.Lock()
	f.moviesPersonIDs = personIDs
	f.mu.Unlock()
	if f.moviesErr != nil {
		return nil, f.moviesErr
	}
	return f.movies, nil
}

func (f *fakeExtractor) Watermark() time.Time { return f.watermark }
