package etl

import (
	"fmt"
	"strings"

	"github.com/filmoteka/searchsync/model"
)

// Delimiters used by the extraction queries for nested join data.
const (
	listSeparator = ", "
	pairSeparator = ":"
)

// Role names recognized when bucketing movie cast. Anything else is
// excluded from every bucket and reported as a DroppedRole.
const (
	RoleActor    = "actor"
	RoleWriter   = "writer"
	RoleDirector = "director"
)

// ParseError reports a malformed delimited field in an extracted row.
// Malformed data aborts the run rather than being silently misassigned.
type ParseError struct {
	Field  string
	Record string
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s of record %s: malformed value %q", e.Field, e.Record, e.Value)
}

// DroppedRole identifies a cast entry whose role name fell outside the
// recognized set. The orchestrator surfaces these as data-quality
// warnings; they do not fail the transform.
type DroppedRole struct {
	FilmID   string
	PersonID string
	Role     string
}

// TransformGenres maps genre rows 1:1 to genre documents.
func TransformGenres(rows []GenreRow) []model.Genre {
	genres := make([]model.Genre, 0, len(rows))
	for _, r := range rows {
		genres = append(genres, model.Genre{ID: r.ID, Name: r.Name})
	}
	return genres
}

// GroupPersonFilms groups person-film join rows by person id into one
// person document each, with the person's films in first-seen row order.
func GroupPersonFilms(rows []PersonFilmRow) []model.PersonFilm {
	index := make(map[string]int, len(rows))
	var persons []model.PersonFilm

	for _, r := range rows {
		i, ok := index[r.ID]
		if !ok {
			i = len(persons)
			index[r.ID] = i
			persons = append(persons, model.PersonFilm{ID: r.ID, FullName: r.FullName})
		}
		persons[i].Films = append(persons[i].Films, model.FilmRole{
			ID:         r.FilmWorkID,
			Title:      r.Title,
			IMDBRating: r.IMDBRating,
			Roles:      splitList(r.Roles),
		})
	}

	return persons
}

// TransformMovies decodes movie rows into fully denormalized film
// documents, bucketing cast by role. Malformed delimited fields return a
// ParseError naming the offending record.
func TransformMovies(rows []MovieRow) ([]model.Film, []DroppedRole, error) {
	films := make([]model.Film, 0, len(rows))
	var dropped []DroppedRole

	for _, r := range rows {
		genres, err := decodeGenres(r)
		if err != nil {
			return nil, nil, err
		}

		cast, castDropped, err := decodeCast(r)
		if err != nil {
			return nil, nil, err
		}
		dropped = append(dropped, castDropped...)

		films = append(films, model.Film{
			ID:          r.FilmWorkID,
			Title:       r.Title,
			IMDBRating:  r.IMDBRating,
			Description: r.Description,
			Genre:       genres,
			Actors:      cast[RoleActor],
			Writers:     cast[RoleWriter],
			Directors:   cast[RoleDirector],
		})
	}

	return films, dropped, nil
}

// decodeGenres splits the "id:name" genre pairs of a movie row.
func decodeGenres(r MovieRow) ([]model.Genre, error) {
	entries := splitList(r.Genres)
	genres := make([]model.Genre, 0, len(entries))

	for _, entry := range entries {
		id, name, ok := splitPair(entry)
		if !ok {
			return nil, &ParseError{Field: "genres", Record: r.FilmWorkID, Value: entry}
		}
		genres = append(genres, model.Genre{ID: id, Name: name})
	}

	return genres, nil
}

// decodeCast zips person ids with "full_name:role" pairs and buckets the
// result into actors, writers and directors.
func decodeCast(r MovieRow) (map[string][]model.Person, []DroppedRole, error) {
	ids := splitList(r.PersonIDs)
	withRoles := splitList(r.PersonsWithRoles)

	if len(ids) != len(withRoles) {
		return nil, nil, &ParseError{
			Field:  "person_ids/persons_with_roles",
			Record: r.FilmWorkID,
			Value:  fmt.Sprintf("%d ids vs %d role entries", len(ids), len(withRoles)),
		}
	}

	cast := map[string][]model.Person{
		RoleActor:    {},
		RoleWriter:   {},
		RoleDirector: {},
	}
	var dropped []DroppedRole

	for i, id := range ids {
		fullName, role, ok := splitPair(withRoles[i])
		if !ok {
			return nil, nil, &ParseError{Field: "persons_with_roles", Record: r.FilmWorkID, Value: withRoles[i]}
		}

		if _, known := cast[role]; !known {
			dropped = append(dropped, DroppedRole{FilmID: r.FilmWorkID, PersonID: id, Role: role})
			continue
		}
		cast[role] = append(cast[role], model.Person{ID: id, FullName: fullName})
	}

	return cast, dropped, nil
}

// splitList splits a ", "-delimited field. Empty fields yield nil.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

// splitPair splits one "a:b" entry, reporting wrong field counts.
func splitPair(s string) (string, string, bool) {
	parts := strings.Split(s, pairSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
