package etl

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

//go:embed queries/*.sql
var queryFS embed.FS

// DefaultBatchSize bounds how many rows a single cursor fetch pulls.
const DefaultBatchSize = 100

// Extractor streams raw rows from the relational source, lower-bounded by
// the modification-time watermark the extractor was built with. Movies
// returns only films the given persons participated in; an empty id set
// yields no rows. Watermark reports the maximum modification time seen
// across all extractions so far, for the caller to persist.
type Extractor interface {
	Genres(ctx context.Context) ([]GenreRow, error)
	Persons(ctx context.Context) ([]PersonRow, error)
	PersonFilms(ctx context.Context) ([]PersonFilmRow, error)
	Movies(ctx context.Context, personIDs []string) ([]MovieRow, error)
	Watermark() time.Time
}

type row interface {
	modifiedAt() time.Time
}

// PostgresExtractor implements Extractor over a bun DB handle. Each
// extraction runs in its own read-only transaction with a server-side
// cursor, fetching batchSize rows at a time until an empty batch signals
// end of stream. The connection pool is shared; no transaction spans two
// extractions.
type PostgresExtractor struct {
	db        *bun.DB
	watermark time.Time
	batchSize int

	mu  sync.Mutex
	max time.Time
}

// NewPostgresExtractor builds an extractor for one sync run. batchSize
// values below 1 fall back to DefaultBatchSize.
func NewPostgresExtractor(db *bun.DB, watermark time.Time, batchSize int) *PostgresExtractor {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &PostgresExtractor{db: db, watermark: watermark, batchSize: batchSize, max: watermark}
}

// Genres streams genre rows modified at or after the watermark.
func (e *PostgresExtractor) Genres(ctx context.Context) ([]GenreRow, error) {
	return extract[GenreRow](ctx, e, "genre.sql", e.watermark)
}

// Persons streams person rows modified at or after the watermark.
func (e *PostgresExtractor) Persons(ctx context.Context) ([]PersonRow, error) {
	return extract[PersonRow](ctx, e, "person.sql", e.watermark)
}

// PersonFilms streams the person-film join rows touched since the watermark.
func (e *PostgresExtractor) PersonFilms(ctx context.Context) ([]PersonFilmRow, error) {
	return extract[PersonFilmRow](ctx, e, "person_film_work.sql", e.watermark)
}

// Movies streams film rows for films the given persons participated in.
func (e *PostgresExtractor) Movies(ctx context.Context, personIDs []string) ([]MovieRow, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	return extract[MovieRow](ctx, e, "movie.sql", e.watermark, bun.In(personIDs))
}

// Watermark returns the maximum modification time observed so far. Before
// any extraction it equals the run's input watermark.
func (e *PostgresExtractor) Watermark() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.max
}

func (e *PostgresExtractor) observe(t time.Time) {
	e.mu.Lock()
	if t.After(e.max) {
		e.max = t
	}
	e.mu.Unlock()
}

// extract declares a server-side cursor for the named query and drains it
// in bounded batches. The cursor lives inside a read-only transaction, so
// it is closed implicitly when the transaction ends.
func extract[T row](ctx context.Context, e *PostgresExtractor, queryFile string, args ...any) ([]T, error) {
	query, err := loadQuery(queryFile)
	if err != nil {
		return nil, err
	}

	var out []T
	err = e.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("DECLARE etl_cur NO SCROLL CURSOR FOR "+query, args...).Exec(ctx); err != nil {
			return fmt.Errorf("declare cursor for %s: %w", queryFile, err)
		}

		fetch := fmt.Sprintf("FETCH FORWARD %d FROM etl_cur", e.batchSize)
		for {
			var batch []T
			if err := tx.NewRaw(fetch).Scan(ctx, &batch); err != nil {
				return fmt.Errorf("fetch batch for %s: %w", queryFile, err)
			}
			if len(batch) == 0 {
				return nil
			}
			for _, r := range batch {
				e.observe(r.modifiedAt())
			}
			out = append(out, batch...)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadQuery(name string) (string, error) {
	b, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		return "", fmt.Errorf("load query %s: %w", name, err)
	}
	return string(b), nil
}
