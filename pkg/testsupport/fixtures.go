// Package testsupport provides fixture helpers shared by the package
// tests.
package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// LoadFixture reads test data from a fixture file. The path is relative
// to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON reads a JSON fixture file and unmarshals it into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteFixture writes data to a temp-dir file and returns its path.
// Useful for tests that need an on-disk directory of inputs.
func WriteFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := dir + "/" + name
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}
