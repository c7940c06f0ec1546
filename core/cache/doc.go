// Package cache provides a small write-once in-memory cache.
//
// It backs the raw-byte cache for downloaded objects and the parsed-metadata
// cache. Datasets are treated as immutable once published, so cached content is
// never re-validated against the remote store; the optional capacity bound
// exists to cap memory, not to provide freshness.
package cache
