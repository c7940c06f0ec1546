// Package dataset resolves and loads simulation datasets.
//
// Two JSON metadata documents drive index resolution: the simulation index
// (index -> filename, DGP) and the DGP info document (DGP -> difficulty tier).
// EligibleIndices joins them to answer "which simulations match this
// difficulty"; the loaders turn keys or resolved indices into dataframes,
// singly, in bulk, by difficulty, or by seeded random sample.
//
// Parsed metadata is cached per source identifier with the same write-once,
// never-invalidated semantics as the raw-byte cache.
package dataset
