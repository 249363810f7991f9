package etl

import "time"

// Raw row shapes produced by the extraction queries. Nested join data
// arrives as delimited strings (", " between entries, ":" within a pair)
// and is decoded by the transformer.

// GenreRow is one row of the genre query.
type GenreRow struct {
	ID       string    `bun:"id"`
	Name     string    `bun:"name"`
	Modified time.Time `bun:"modified"`
}

func (r GenreRow) modifiedAt() time.Time { return r.Modified }

// PersonRow is one row of the person query.
type PersonRow struct {
	ID       string    `bun:"id"`
	FullName string    `bun:"full_name"`
	Modified time.Time `bun:"modified"`
}

func (r PersonRow) modifiedAt() time.Time { return r.Modified }

// PersonFilmRow is one row of the person-film join query: one film per
// row, roles aggregated as a ", "-delimited list.
type PersonFilmRow struct {
	ID         string    `bun:"id"`
	FullName   string    `bun:"full_name"`
	FilmWorkID string    `bun:"film_work_id"`
	Title      string    `bun:"title"`
	IMDBRating *float64  `bun:"imdb_rating"`
	Roles      string    `bun:"roles"`
	Modified   time.Time `bun:"modified"`
}

func (r PersonFilmRow) modifiedAt() time.Time { return r.Modified }

// MovieRow is one row of the movie query. Genres arrive as "id:name"
// pairs; PersonIDs and PersonsWithRoles are parallel lists zipped
// positionally by the transformer, the latter holding "full_name:role"
// pairs.
type MovieRow struct {
	FilmWorkID       string    `bun:"film_work_id"`
	Title            string    `bun:"title"`
	IMDBRating       *float64  `bun:"imdb_rating"`
	Description      string    `bun:"description"`
	Genres           string    `bun:"genres"`
	PersonIDs        string    `bun:"person_ids"`
	PersonsWithRoles string    `bun:"persons_with_roles"`
	Modified         time.Time `bun:"modified"`
}

func (r MovieRow) modifiedAt() time.Time { return r.Modified }
