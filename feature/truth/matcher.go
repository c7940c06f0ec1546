package truth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cidl/core/frame"
	"cidl/core/storage"
	"cidl/feature/dataset"

	"go.uber.org/zap"
)

var (
	// ErrMismatch reports a truth/simulation index discrepancy under PolicyError.
	ErrMismatch = errors.New("truth/simulation mismatch")
	// ErrAborted reports that the user declined to continue after a mismatch.
	ErrAborted = errors.New("aborted by user due to truth/simulation mismatch")
)

// Matcher loads ground-truth datasets and reconciles them against simulation
// index sets. It holds no state across calls; every call produces a fresh
// Bundle.
type Matcher struct {
	store   *dataset.Store
	log     *zap.Logger
	confirm Confirmer
	prefix  string
}

// NewMatcher creates a matcher on top of a dataset store. The store's
// configured truth prefix is the default key namespace.
func NewMatcher(store *dataset.Store, log *zap.Logger, confirm Confirmer) *Matcher {
	return &Matcher{
		store:   store,
		log:     log,
		confirm: confirm,
		prefix:  store.TruthPrefix(),
	}
}

// Options control truth loading.
type Options struct {
	// Prefix overrides the configured truth prefix.
	Prefix string
	// SkipCache bypasses the byte cache for this call.
	SkipCache bool
	// OnMissing selects the policy for truth files absent from storage.
	OnMissing Policy
}

// MatchOptions control reconciliation against a simulation set.
type MatchOptions struct {
	Options
	// TruthIndices explicitly selects the truth indices to load. When nil the
	// simulation keys are used (automatic matching) and mismatch checking is
	// skipped, since the sets agree by construction.
	TruthIndices []int
	// OnMismatch selects the policy for index discrepancies. Only consulted
	// when TruthIndices is set explicitly.
	OnMismatch Policy
	// Prompt asks for confirmation after a mismatch warning. Off-terminal the
	// prompt degrades to warn-only rather than blocking.
	Prompt bool
}

// TruthKey builds the conventional key for a truth dataset.
func TruthKey(prefix string, index int) string {
	return fmt.Sprintf("%s/truth_%04d.parquet", strings.Trim(prefix, "/"), index)
}

// LoadTruth loads a single truth file by simulation index.
func (m *Matcher) LoadTruth(ctx context.Context, index int, opts Options) (frame.Frame, error) {
	return m.store.LoadKey(ctx, TruthKey(m.resolvePrefix(opts), index), !opts.SkipCache)
}

// LoadTruths loads multiple truth files by index.
//
// A storage "not found" is the only failure treated as a missing truth file
// and routed through the OnMissing policy; every other transport error
// propagates unconditionally. Missing indices are recorded in the bundle under
// all three policies.
//
// This entry point takes indices only. Callers holding a simulations map
// should use TruthForSimulations, which also reconciles the two index sets.
func (m *Matcher) LoadTruths(ctx context.Context, indices []int, opts Options) (*Bundle, error) {
	prefix := m.resolvePrefix(opts)
	idxs := normalizeIndices(indices)

	loaded := make(map[int]frame.Frame, len(idxs))
	var missing []int
	var warnings []string

	for _, idx := range idxs {
		key := TruthKey(prefix, idx)

		df, err := m.store.LoadKey(ctx, key, !opts.SkipCache)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}

			missing = append(missing, idx)
			switch opts.OnMissing {
			case PolicyError:
				return nil, fmt.Errorf("truth file not found for index %d (key %q): %w", idx, key, storage.ErrNotFound)
			case PolicyWarn:
				msg := fmt.Sprintf("Truth file not found for index %d (key %q).", idx, key)
				warnings = append(warnings, msg)
				m.log.Warn(msg)
			}
			continue
		}
		loaded[idx] = df
	}

	var missingForRequested []int
	for _, idx := range idxs {
		if _, ok := loaded[idx]; !ok {
			missingForRequested = append(missingForRequested, idx)
		}
	}

	// In indices-only mode there is no separate simulation context; the
	// requested indices stand in for it.
	return &Bundle{
		SimulationIndices:     idxs,
		TruthIndicesRequested: idxs,
		Truth:                 loaded,
		MissingTruthFiles:     missing,
		MissingForSimulations: missingForRequested,
		ExtraTruth:            []int{},
		Warnings:              warnings,
	}, nil
}

// TruthForSimulations loads truth matched to a simulations map and reconciles
// the index sets.
//
// With TruthIndices nil the truth indices are exactly the simulation keys and
// no mismatch check runs. With TruthIndices set, the loaded truth set is
// compared against the simulation keys and the OnMismatch policy applies to
// any discrepancy.
func (m *Matcher) TruthForSimulations(ctx context.Context, simulations map[int]frame.Frame, opts MatchOptions) (*Bundle, error) {
	simIndices := make([]int, 0, len(simulations))
	for idx := range simulations {
		simIndices = append(simIndices, idx)
	}
	sort.Ints(simIndices)

	requested := simIndices
	explicit := opts.TruthIndices != nil
	if explicit {
		requested = normalizeIndices(opts.TruthIndices)
	}

	loadedBundle, err := m.LoadTruths(ctx, requested, opts.Options)
	if err != nil {
		return nil, err
	}

	truthLoaded := loadedBundle.TruthIndicesLoaded()
	missingForSims := difference(simIndices, truthLoaded)
	extraTruth := difference(truthLoaded, simIndices)
	warnings := append([]string{}, loadedBundle.Warnings...)

	// Mismatch handling only applies when the caller explicitly overrode the
	// truth selection; automatic matching cannot mismatch.
	if explicit && (len(missingForSims) > 0 || len(extraTruth) > 0) {
		msg := formatMismatch(simIndices, truthLoaded, missingForSims, extraTruth, loadedBundle.MissingTruthFiles)

		switch opts.OnMismatch {
		case PolicyError:
			return nil, fmt.Errorf("%w:\n%s", ErrMismatch, msg)
		case PolicyWarn:
			warnings = append(warnings, msg)
			m.log.Warn(msg)

			if opts.Prompt {
				if m.confirm != nil && m.confirm.CanPrompt() {
					ok, err := m.confirm.Confirm("Mismatch detected. Continue anyway?")
					if err != nil {
						return nil, fmt.Errorf("%w: %v", ErrAborted, err)
					}
					if !ok {
						return nil, ErrAborted
					}
				} else {
					note := "Prompt requested, but environment is non-interactive; proceeding with warning only."
					warnings = append(warnings, note)
					m.log.Warn(note)
				}
			}
		}
	}

	return &Bundle{
		SimulationIndices:     simIndices,
		TruthIndicesRequested: requested,
		Truth:                 loadedBundle.Truth,
		MissingTruthFiles:     loadedBundle.MissingTruthFiles,
		MissingForSimulations: missingForSims,
		ExtraTruth:            extraTruth,
		Warnings:              warnings,
	}, nil
}

func (m *Matcher) resolvePrefix(opts Options) string {
	if opts.Prefix != "" {
		return opts.Prefix
	}
	return m.prefix
}

// formatMismatch builds the diagnostic enumerating both index sets and the
// automatic-matching hint.
func formatMismatch(simIndices, truthLoaded, missingForSims, extraTruth, missingFiles []int) string {
	var b strings.Builder
	b.WriteString("Truth/Simulation mismatch detected.\n")
	fmt.Fprintf(&b, "- Simulation indices: %v\n", simIndices)
	fmt.Fprintf(&b, "- Truth indices loaded: %v\n", truthLoaded)
	if len(missingForSims) > 0 {
		fmt.Fprintf(&b, "- Missing truth for simulation indices: %v\n", missingForSims)
	}
	if len(extraTruth) > 0 {
		fmt.Fprintf(&b, "- Extra truth indices (not in simulations): %v\n", extraTruth)
	}
	if len(missingFiles) > 0 {
		fmt.Fprintf(&b, "- Truth files not found in storage: %v\n", missingFiles)
	}
	b.WriteString("Hint: omit TruthIndices to load exactly the truth datasets corresponding to your simulations.")
	return b.String()
}

// normalizeIndices deduplicates and sorts.
func normalizeIndices(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// difference returns the sorted elements of a not present in b.
func difference(a, b []int) []int {
	inB := make(map[int]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	out := []int{}
	for _, v := range a {
		if _, ok := inB[v]; !ok {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
