package truth

import (
	"sort"

	"cidl/core/frame"
)

// Bundle keeps truth loading results transparent and reproducible.
//
// Invariants:
//   - MissingForSimulations = SimulationIndices − keys(Truth)
//   - ExtraTruth = keys(Truth) − SimulationIndices
//   - TruthIndicesLoaded() ⊆ TruthIndicesRequested
type Bundle struct {
	// SimulationIndices are the simulation indices this bundle was matched
	// against. In indices-only mode they mirror the requested truth indices.
	SimulationIndices []int
	// TruthIndicesRequested are the truth indices asked for.
	TruthIndicesRequested []int
	// Truth maps each successfully loaded index to its dataframe.
	Truth map[int]frame.Frame
	// MissingTruthFiles are requested indices with no object in storage.
	MissingTruthFiles []int
	// MissingForSimulations are simulation indices without loaded truth.
	MissingForSimulations []int
	// ExtraTruth are loaded truth indices outside the simulation set.
	ExtraTruth []int
	// Warnings are the human-readable diagnostics collected along the way.
	Warnings []string
}

// IsFullMatch reports whether every simulation has truth and no extra truth
// was loaded.
func (b *Bundle) IsFullMatch() bool {
	return len(b.MissingForSimulations) == 0 && len(b.ExtraTruth) == 0
}

// TruthIndicesLoaded returns the successfully loaded indices in ascending order.
func (b *Bundle) TruthIndicesLoaded() []int {
	loaded := make([]int, 0, len(b.Truth))
	for idx := range b.Truth {
		loaded = append(loaded, idx)
	}
	sort.Ints(loaded)
	return loaded
}
