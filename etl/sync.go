package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/filmoteka/searchsync/model"
	"github.com/filmoteka/searchsync/schema"
)

// Index collection names, one per document shape. The schema directory is
// expected to carry one definition file per name.
const (
	GenresIndex  = "genres"
	PersonsIndex = "persons"
	MoviesIndex  = "movies"
)

// Result summarizes one sync pass. NextWatermark is the maximum
// modification time observed across all extractions; persisting it makes
// the next run incremental.
type Result struct {
	Genres        int
	Persons       int
	Movies        int
	NextWatermark time.Time
}

// Syncer drives one full synchronization pass: load schemas, ensure
// indices, extract and transform the three entity pipelines concurrently,
// then bulk-load each result set concurrently. The Syncer is built per
// run and discarded.
type Syncer struct {
	extractor Extractor
	loader    *Loader
	schemaDir string
	logger    *slog.Logger
}

// NewSyncer wires a sync pass. A nil logger falls back to slog.Default.
func NewSyncer(extractor Extractor, loader *Loader, schemaDir string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{extractor: extractor, loader: loader, schemaDir: schemaDir, logger: logger}
}

// Run executes one pass. Both the extraction fan-out and the load fan-out
// are barriers: the first failure cancels sibling tasks and fails the
// run. Re-running with unchanged inputs is safe since loads are upserts
// keyed by document id.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	schemas, err := schema.LoadDir(s.schemaDir)
	if err != nil {
		return Result{}, err
	}
	for _, sch := range schemas {
		if err := s.loader.EnsureIndex(ctx, sch.Index, sch.Body); err != nil {
			return Result{}, err
		}
	}

	var (
		genres  []model.Genre
		persons []model.PersonFilm
		films   []model.Film
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.extractor.Genres(gctx)
		if err != nil {
			return fmt.Errorf("extract genres: %w", err)
		}
		genres = TransformGenres(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.extractor.PersonFilms(gctx)
		if err != nil {
			return fmt.Errorf("extract person films: %w", err)
		}
		persons = GroupPersonFilms(rows)
		return nil
	})
	g.Go(func() error {
		personRows, err := s.extractor.Persons(gctx)
		if err != nil {
			return fmt.Errorf("extract persons: %w", err)
		}
		ids := make([]string, 0, len(personRows))
		for _, p := range personRows {
			ids = append(ids, p.ID)
		}

		rows, err := s.extractor.Movies(gctx, ids)
		if err != nil {
			return fmt.Errorf("extract movies: %w", err)
		}

		var dropped []DroppedRole
		films, dropped, err = TransformMovies(rows)
		if err != nil {
			return fmt.Errorf("transform movies: %w", err)
		}
		for _, d := range dropped {
			s.logger.Warn("unrecognized role dropped", "film_id", d.FilmID, "person_id", d.PersonID, "role", d.Role)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	load, lctx := errgroup.WithContext(ctx)
	load.Go(func() error { return loadDocs(lctx, s.loader, GenresIndex, genres) })
	load.Go(func() error { return loadDocs(lctx, s.loader, PersonsIndex, persons) })
	load.Go(func() error { return loadDocs(lctx, s.loader, MoviesIndex, films) })
	if err := load.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{
		Genres:        len(genres),
		Persons:       len(persons),
		Movies:        len(films),
		NextWatermark: s.extractor.Watermark(),
	}
	s.logger.Info("sync pass complete",
		"genres", result.Genres,
		"persons", result.Persons,
		"movies", result.Movies,
		"next_watermark", result.NextWatermark,
	)
	return result, nil
}

func loadDocs[T interface{ DocumentID() string }](ctx context.Context, loader *Loader, index string, items []T) error {
	docs, err := Documents(items)
	if err != nil {
		return err
	}
	_, err = loader.Load(ctx, index, docs)
	return err
}
