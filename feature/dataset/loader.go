package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"cidl/core/cache"
	"cidl/core/frame"
	"cidl/core/storage"

	"go.uber.org/zap"
)

// ErrInvalidSampleSize reports a non-positive or over-large random sample request.
var ErrInvalidSampleSize = errors.New("invalid sample size")

// Store loads simulation datasets from the object store through the backend's
// byte cache, resolving filenames via the metadata index where possible.
//
// Store shares the backend's caches and is therefore not safe for concurrent
// use without external locking.
type Store struct {
	backend *storage.Backend
	cfg     Config
	log     *zap.Logger
	meta    *cache.Cache[any]
}

// NewStore creates a dataset store on top of a backend.
func NewStore(backend *storage.Backend, cfg Config, log *zap.Logger) *Store {
	return &Store{
		backend: backend,
		cfg:     cfg,
		log:     log,
		meta:    cache.New[any](cfg.MetaCacheCapacity),
	}
}

// Backend exposes the underlying backend for collaborators built on the same
// session and caches.
func (s *Store) Backend() *storage.Backend {
	return s.backend
}

// TruthPrefix returns the configured ground-truth key prefix.
func (s *Store) TruthPrefix() string {
	return s.cfg.TruthPrefix
}

// SimFilename is the fixed-width filename convention for simulation datasets.
func SimFilename(index int) string {
	return fmt.Sprintf("sim_%04d.parquet", index)
}

// LoadOptions control bulk loading.
type LoadOptions struct {
	// Prefix overrides the configured simulation prefix.
	Prefix string
	// SkipCache bypasses the byte cache for this call.
	SkipCache bool
}

// RandomOptions control random sampling.
type RandomOptions struct {
	LoadOptions
	// Difficulty filters the eligible population; empty means all.
	Difficulty Difficulty
	// Seed makes the draw reproducible; nil draws a seed from the clock.
	Seed *int64
}

// LoadKey fetches and parses a single object by its full key.
func (s *Store) LoadKey(ctx context.Context, key string, useCache bool) (frame.Frame, error) {
	data, err := s.backend.FetchBytes(ctx, key, useCache)
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.Parse(data, key)
}

// LoadIndex loads a single simulation by index using the fixed-width filename
// convention. An empty prefix selects the configured simulation prefix.
func (s *Store) LoadIndex(ctx context.Context, index int, opts LoadOptions) (frame.Frame, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = s.cfg.SimPrefix
	}
	key := fmt.Sprintf("%s/%s", prefix, SimFilename(index))
	return s.LoadKey(ctx, key, !opts.SkipCache)
}

// LoadMany loads multiple simulations by index.
//
// Filenames come from the simulation index document where the index is listed;
// otherwise the fixed-width convention applies. A missing index document is
// tolerated (conventions only), but any individual dataset failure propagates:
// there is no partial-failure isolation at this layer.
func (s *Store) LoadMany(ctx context.Context, indices []int, opts LoadOptions) (map[int]frame.Frame, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = s.cfg.SimPrefix
	}

	meta, err := s.SimulationIndex(ctx, !opts.SkipCache)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		s.log.Debug("Simulation index document not found, using filename convention",
			zap.String("source", s.cfg.MetadataSource))
		meta = nil
	}

	out := make(map[int]frame.Frame, len(indices))
	for _, idx := range indices {
		filename := SimFilename(idx)
		if rec, ok := meta[idx]; ok && rec.Filename != "" {
			filename = rec.Filename
		}
		key := fmt.Sprintf("%s/%s", prefix, filename)

		df, err := s.LoadKey(ctx, key, !opts.SkipCache)
		if err != nil {
			return nil, fmt.Errorf("loading simulation %d: %w", idx, err)
		}
		out[idx] = df
	}

	return out, nil
}

// LoadByDifficulty loads every simulation matching a difficulty label.
func (s *Store) LoadByDifficulty(ctx context.Context, difficulty Difficulty, opts LoadOptions) (map[int]frame.Frame, error) {
	indices, err := s.EligibleIndices(ctx, difficulty, !opts.SkipCache)
	if err != nil {
		return nil, err
	}
	return s.LoadMany(ctx, indices, opts)
}

// LoadRandom draws n simulations without replacement from the population
// eligible for the requested difficulty, and loads them in ascending index
// order. The draw is deterministic for a given seed.
func (s *Store) LoadRandom(ctx context.Context, n int, opts RandomOptions) (map[int]frame.Frame, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be a positive integer, got %d", ErrInvalidSampleSize, n)
	}

	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = DifficultyAll
	}

	eligible, err := s.EligibleIndices(ctx, difficulty, !opts.SkipCache)
	if err != nil {
		return nil, err
	}
	if n > len(eligible) {
		return nil, fmt.Errorf("%w: requested n=%d, but only %d simulations available for difficulty %q",
			ErrInvalidSampleSize, n, len(eligible), difficulty)
	}

	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	sampled := make([]int, 0, n)
	for _, pos := range rng.Perm(len(eligible))[:n] {
		sampled = append(sampled, eligible[pos])
	}
	sort.Ints(sampled)

	return s.LoadMany(ctx, sampled, opts.LoadOptions)
}

// LoadPrefix loads every supported object under a prefix, keyed by object key.
//
// This is the one loading layer with partial-failure isolation: a key that
// fails to download or parse is logged and omitted from the result.
func (s *Store) LoadPrefix(ctx context.Context, prefix string, limit int, useCache bool) (map[string]frame.Frame, error) {
	keys, err := s.backend.ListKeys(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}

	out := make(map[string]frame.Frame, len(keys))
	for _, key := range keys {
		df, err := s.LoadKey(ctx, key, useCache)
		if err != nil {
			s.log.Warn("Failed to load object, skipping", zap.String("key", key), zap.Error(err))
			continue
		}
		out[key] = df
	}

	return out, nil
}
