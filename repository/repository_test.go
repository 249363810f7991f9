package repository

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/filmoteka/searchsync/model"
	"github.com/filmoteka/searchsync/search"
)

// fakeCache is an in-memory cache.Cache with per-entry expiry and
// injectable failures, counting every call.
type fakeCache struct {
	entries map[string]fakeEntry
	now     time.Time

	getErr error
	setErr error

	gets int
	sets int
}

type fakeEntry struct {
	value   []byte
	expires time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]fakeEntry{}, now: time.Now()}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	e, ok := f.entries[key]
	if !ok || f.now.After(e.expires) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = fakeEntry{value: value, expires: f.now.Add(ttl)}
	return nil
}

// fakeIndex is an in-memory search.Storage for the read path, counting
// every call.
type fakeIndex struct {
	docs    map[string]json.RawMessage // "index/id" -> source
	hits    []json.RawMessage
	getErr  error
	findErr error

	gets     int
	searches int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]json.RawMessage{}}
}

func (f *fakeIndex) Exists(ctx context.Context, index string) (bool, error) { return true, nil }

func (f *fakeIndex) CreateIndex(ctx context.Context, index string, schema json.RawMessage) error {
	return nil
}

func (f *fakeIndex) Get(ctx context.Context, index, id string) (json.RawMessage, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	doc, ok := f.docs[index+"/"+id]
	return doc, ok, nil
}

func (f *fakeIndex) Search(ctx context.Context, index string, body any) ([]json.RawMessage, error) {
	f.searches++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.hits, nil
}

func (f *fakeIndex) Bulk(ctx context.Context, index string, docs []search.Document) (search.BulkResult, error) {
	return search.BulkResult{}, nil
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGetByID_CacheAside(t *testing.T) {
	cacheStore := newFakeCache()
	index := newFakeIndex()
	id := uuid.NewString()
	want := model.Genre{ID: id, Name: "Action"}
	index.docs["genres/"+id] = mustJSON(t, want)

	repo := New[model.Genre](cacheStore, index, 0, nil)
	ctx := context.Background()

	// Cold cache: one index read, one cache write.
	got, found, err := repo.GetByID(ctx, "genres", id)
	if err != nil || !found {
		t.Fatalf("GetByID() = %v, %v, %v", got, found, err)
	}
	if got != want {
		t.Errorf("GetByID() = %+v, want %+v", got, want)
	}
	if index.gets != 1 || cacheStore.sets != 1 {
		t.Errorf("cold read did %d index reads and %d cache writes, want 1 and 1", index.gets, cacheStore.sets)
	}

	// Warm cache: zero index reads, equal document.
	got2, found, err := repo.GetByID(ctx, "genres", id)
	if err != nil || !found {
		t.Fatalf("warm GetByID() = %v, %v, %v", got2, found, err)
	}
	if got2 != got {
		t.Errorf("warm read returned %+v, want %+v", got2, got)
	}
	if index.gets != 1 {
		t.Errorf("warm read hit the index %d times, want 1 total", index.gets)
	}
}

func TestGetByID_TTLExpiry(t *testing.T) {
	cacheStore := newFakeCache()
	index := newFakeIndex()
	id := uuid.NewString()
	index.docs["movies/"+id] = mustJSON(t, model.Film{ID: id, Title: "Inception"})

	repo := New[model.Film](cacheStore, index, time.Minute, nil)
	ctx := context.Background()

	if _, _, err := repo.GetByID(ctx, "movies", id); err != nil {
		t.Fatal(err)
	}

	// Past the TTL the entry counts as absent and the index is re-read.
	cacheStore.now = cacheStore.now.Add(2 * time.Minute)
	if _, _, err := repo.GetByID(ctx, "movies", id); err != nil {
		t.Fatal(err)
	}
	if index.gets != 2 {
		t.Errorf("index reads = %d, want 2 after TTL expiry", index.gets)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := New[model.Genre](newFakeCache(), newFakeIndex(), 0, nil)

	_, found, err := repo.GetByID(context.Background(), "genres", uuid.NewString())
	if err != nil {
		t.Fatalf("GetByID() error = %v, want absent signal without error", err)
	}
	if found {
		t.Error("GetByID() reported a nonexistent document as found")
	}
}

func TestGetByID_IndexFailurePropagates(t *testing.T) {
	index := newFakeIndex()
	index.getErr = errors.New("connection refused")
	repo := New[model.Genre](newFakeCache(), index, 0, nil)

	if _, _, err := repo.GetByID(context.Background(), "genres", "1"); err == nil {
		t.Fatal("GetByID() swallowed an index transport failure")
	}
}

func TestGetByID_CacheFailuresDegradeToMiss(t *testing.T) {
	cacheStore := newFakeCache()
	cacheStore.getErr = errors.New("cache down")
	cacheStore.setErr = errors.New("cache down")
	index := newFakeIndex()
	id := uuid.NewString()
	want := model.Genre{ID: id, Name: "Drama"}
	index.docs["genres/"+id] = mustJSON(t, want)

	repo := New[model.Genre](cacheStore, index, 0, nil)

	got, found, err := repo.GetByID(context.Background(), "genres", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v; cache failures must not fail the read", err)
	}
	if !found || got != want {
		t.Errorf("GetByID() = %+v, %v; want the index document", got, found)
	}
}

func TestGetBySearch_CacheAside(t *testing.T) {
	cacheStore := newFakeCache()
	index := newFakeIndex()
	want := []model.Film{
		{ID: uuid.NewString(), Title: "Inception"},
		{ID: uuid.NewString(), Title: "Tenet"},
	}
	index.hits = []json.RawMessage{mustJSON(t, want[0]), mustJSON(t, want[1])}

	repo := New[model.Film](cacheStore, index, 0, nil)
	ctx := context.Background()
	body := map[string]any{"query": map[string]any{"match": map[string]any{"title": "inception"}}}

	got, found, err := repo.GetBySearch(ctx, "movies", body)
	if err != nil || !found {
		t.Fatalf("GetBySearch() = %v, %v, %v", got, found, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetBySearch() = %+v, want %+v", got, want)
	}

	// A structurally equal body built separately hits the cache, not the index.
	equivalent := map[string]any{"query": map[string]any{"match": map[string]any{"title": "inception"}}}
	got2, found, err := repo.GetBySearch(ctx, "movies", equivalent)
	if err != nil || !found {
		t.Fatalf("warm GetBySearch() = %v, %v, %v", got2, found, err)
	}
	if index.searches != 1 {
		t.Errorf("index searches = %d, want 1 total", index.searches)
	}
	if !reflect.DeepEqual(got2, want) {
		t.Errorf("warm GetBySearch() = %+v, want %+v", got2, want)
	}
}

func TestGetBySearch_EmptyIsAbsentAndUncached(t *testing.T) {
	cacheStore := newFakeCache()
	index := newFakeIndex()
	repo := New[model.Film](cacheStore, index, 0, nil)
	ctx := context.Background()
	body := map[string]any{"query": "nothing"}

	for i := 0; i < 2; i++ {
		docs, found, err := repo.GetBySearch(ctx, "movies", body)
		if err != nil {
			t.Fatalf("GetBySearch() error = %v, want absent signal without error", err)
		}
		if found || docs != nil {
			t.Errorf("GetBySearch() = %v, %v; want absent", docs, found)
		}
	}

	// Empty results are never cached, so both calls hit the index.
	if index.searches != 2 {
		t.Errorf("index searches = %d, want 2", index.searches)
	}
	if cacheStore.sets != 0 {
		t.Errorf("cache writes = %d, want none for empty results", cacheStore.sets)
	}
}

func TestGetBySearch_IndexFailurePropagates(t *testing.T) {
	index := newFakeIndex()
	index.findErr = errors.New("search timeout")
	repo := New[model.Film](newFakeCache(), index, 0, nil)

	if _, _, err := repo.GetBySearch(context.Background(), "movies", map[string]any{}); err == nil {
		t.Fatal("GetBySearch() swallowed an index transport failure")
	}
}
