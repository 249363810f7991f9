package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// KeySeparator delimits cache key segments.
const KeySeparator = ":"

// PointKey builds the cache key for a point lookup: "{index}:{id}".
func PointKey(index, id string) string {
	return index + KeySeparator + id
}

// SearchKey builds the cache key for a search query:
// "{index}:query:{md5hex(canonical json body)}". Structurally equal
// bodies hash to the same key regardless of field ordering.
func SearchKey(index string, body any) (string, error) {
	canonical, err := canonicalJSON(body)
	if err != nil {
		return "", fmt.Errorf("canonicalize query body: %w", err)
	}

	sum := md5.Sum(canonical)
	return index + KeySeparator + "query" + KeySeparator + hex.EncodeToString(sum[:]), nil
}

// canonicalJSON serializes v with deterministic object key ordering.
// encoding/json emits map keys sorted, so round-tripping through untyped
// maps canonicalizes every nesting level, including struct bodies whose
// field order would otherwise follow declaration order.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
