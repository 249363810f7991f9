// Package cache defines the key-value cache contract used by the
// cache-aside read path, plus deterministic cache key derivation.
//
// # Overview
//
// The package exports:
//
//   - Cache: a narrow get/set interface over any key-value store with TTL
//     support. Implementations live under internal/cacheinfra (Redis for
//     shared deployments, sturdyc for in-process use).
//   - PointKey / SearchKey: pure key constructors. Point lookups key on
//     index name and document id; searches key on a digest of the
//     canonicalized query body.
//
// # Key Determinism
//
// SearchKey canonicalizes the query body before hashing: the body is
// round-tripped through map-based JSON so object keys are emitted in
// sorted order at every nesting level. Two structurally equal bodies
// therefore always produce the same key, regardless of field order at the
// call site:
//
//	a, _ := cache.SearchKey("movies", map[string]any{"query": q, "size": 10})
//	b, _ := cache.SearchKey("movies", map[string]any{"size": 10, "query": q})
//	// a == b
//
// The digest is MD5. Inputs are not adversarial (they are the caller's own
// query bodies), so a non-cryptographic-grade hash is acceptable here.
package cache
