package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// ErrSchema reports a metadata document whose shape does not match the
// published contract.
var ErrSchema = errors.New("malformed metadata document")

// SimulationRecord describes one simulation dataset in the index document.
type SimulationRecord struct {
	Index    int
	Filename string
	DGP      int
	// HasDGP distinguishes a record that carries no DGP assignment from one
	// assigned to DGP 0.
	HasDGP bool
}

// DGPRecord describes one data-generating process and its difficulty tier.
type DGPRecord struct {
	DGP            int
	DifficultyTier string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readJSONSource reads a JSON document from a local path or, if no such file
// exists, from the remote store. The decoded value is cached by source
// identifier.
func (s *Store) readJSONSource(ctx context.Context, source string, useCache bool) (any, error) {
	if useCache {
		if v, ok := s.meta.Get(source); ok {
			return v, nil
		}
	}

	var raw []byte
	if _, err := os.Stat(source); err == nil {
		raw, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading metadata file %q: %w", source, err)
		}
	} else {
		remote, err := s.backend.FetchBytes(ctx, source, useCache)
		if err != nil {
			return nil, err
		}
		raw = remote
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSchema, source, err)
	}

	if useCache {
		s.meta.Put(source, value)
	}

	return value, nil
}

// SimulationIndex loads the simulation index document and keys it by
// simulation index.
func (s *Store) SimulationIndex(ctx context.Context, useCache bool) (map[int]SimulationRecord, error) {
	source := s.cfg.MetadataSource
	value, err := s.readJSONSource(ctx, source, useCache)
	if err != nil {
		return nil, err
	}

	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q: simulation index must be a JSON list", ErrSchema, source)
	}

	byIndex := make(map[int]SimulationRecord, len(list))
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q: simulation index entries must be objects", ErrSchema, source)
		}

		idx, ok := asInt(record["index"])
		if !ok {
			return nil, fmt.Errorf("%w: %q: record missing 'index'", ErrSchema, source)
		}

		rec := SimulationRecord{Index: idx}
		if name, ok := record["filename"].(string); ok {
			rec.Filename = name
		}
		if dgp, ok := asInt(record["dgp"]); ok {
			rec.DGP = dgp
			rec.HasDGP = true
		}
		byIndex[idx] = rec
	}

	return byIndex, nil
}

// DGPInfo loads the DGP info document and keys it by DGP id.
func (s *Store) DGPInfo(ctx context.Context, useCache bool) (map[int]DGPRecord, error) {
	source := s.cfg.DGPInfoSource
	value, err := s.readJSONSource(ctx, source, useCache)
	if err != nil {
		return nil, err
	}

	doc, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q: DGP info must be a JSON object containing 'dgps'", ErrSchema, source)
	}
	list, ok := doc["dgps"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q: DGP info field 'dgps' must be a list", ErrSchema, source)
	}

	byDGP := make(map[int]DGPRecord, len(list))
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q: 'dgps' entries must be objects", ErrSchema, source)
		}

		id, ok := asInt(record["dgp"])
		if !ok {
			return nil, fmt.Errorf("%w: %q: DGP record missing 'dgp'", ErrSchema, source)
		}

		rec := DGPRecord{DGP: id}
		if tier, ok := record["difficulty_tier"].(string); ok {
			rec.DifficultyTier = tier
		}
		byDGP[id] = rec
	}

	return byDGP, nil
}

// EligibleIndices returns the sorted simulation indices matching the requested
// difficulty. This is the only place the two metadata documents are joined:
// simulation -> DGP -> difficulty tier.
func (s *Store) EligibleIndices(ctx context.Context, difficulty Difficulty, useCache bool) ([]int, error) {
	if _, err := ParseDifficulty(string(difficulty)); err != nil {
		return nil, err
	}

	meta, err := s.SimulationIndex(ctx, useCache)
	if err != nil {
		return nil, err
	}

	tiers := difficulty.Tiers()
	if tiers == nil {
		indices := make([]int, 0, len(meta))
		for idx := range meta {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		return indices, nil
	}

	info, err := s.DGPInfo(ctx, useCache)
	if err != nil {
		return nil, err
	}

	allowedDGPs := make(map[int]struct{})
	for id, rec := range info {
		if _, ok := tiers[rec.DifficultyTier]; ok {
			allowedDGPs[id] = struct{}{}
		}
	}

	var indices []int
	for idx, rec := range meta {
		if !rec.HasDGP {
			continue
		}
		if _, ok := allowedDGPs[rec.DGP]; ok {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	return indices, nil
}

// asInt coerces the numeric representations a decoded JSON document may carry.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
