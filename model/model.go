// Package model defines the denormalized document shapes stored in the
// search index. The ETL pipeline produces them; the cache-aside repository
// reads them back.
package model

// Genre is a film genre. Immutable once loaded, identified by id.
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DocumentID returns the index document id.
func (g Genre) DocumentID() string { return g.ID }

// Person is a participant in one or more films.
type Person struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// DocumentID returns the index document id.
func (p Person) DocumentID() string { return p.ID }

// FilmRole describes one film a person participated in and the
// capacities they held there.
type FilmRole struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	IMDBRating *float64 `json:"imdb_rating"`
	Roles      []string `json:"roles"`
}

// PersonFilm is the person document as stored in the persons index: the
// person plus the denormalized list of their films.
type PersonFilm struct {
	ID       string     `json:"id"`
	FullName string     `json:"full_name"`
	Films    []FilmRole `json:"films"`
}

// DocumentID returns the index document id.
func (p PersonFilm) DocumentID() string { return p.ID }

// Film is the fully denormalized, query-ready movie document. IMDBRating
// is nil when the source has no rating; valid values fall in [1.0, 10.0].
type Film struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	IMDBRating  *float64 `json:"imdb_rating"`
	Description string   `json:"description"`
	Genre       []Genre  `json:"genre"`
	Actors      []Person `json:"actors"`
	Writers     []Person `json:"writers"`
	Directors   []Person `json:"directors"`
}

// DocumentID returns the index document id.
func (f Film) DocumentID() string { return f.ID }
