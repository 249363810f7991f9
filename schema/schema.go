// Package schema loads index definitions from a directory of JSON files.
// The file base name (sans extension) is the index name; the contents are
// treated as an opaque mapping blob handed to the search engine verbatim.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Schema pairs an index name with its definition blob.
type Schema struct {
	Index string
	Body  json.RawMessage
}

// LoadDir reads every regular file in dir as an index schema. A file that
// cannot be read or does not contain valid JSON fails the whole load; a
// sync run must not proceed with a partial schema set. Results are sorted
// by index name so callers iterate deterministically.
func LoadDir(dir string) ([]Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %s: %w", dir, err)
	}

	var schemas []Schema
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema file %s: %w", path, err)
		}

		if !json.Valid(body) {
			return nil, fmt.Errorf("schema file %s: invalid JSON", path)
		}

		schemas = append(schemas, Schema{
			Index: indexName(entry.Name()),
			Body:  json.RawMessage(body),
		})
	}

	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Index < schemas[j].Index })
	return schemas, nil
}

// indexName strips the extension: "movies.json" names the "movies" index.
func indexName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}
