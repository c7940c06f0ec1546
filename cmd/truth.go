package cmd

import (
	"fmt"

	"cidl/feature/dataset"
	"cidl/feature/truth"

	"github.com/spf13/cobra"
)

var (
	truthIndices   []int
	truthPrefix    string
	truthSkipCache bool
	onMissing      string
	onMismatch     string
	truthPrompt    bool
)

// truthCmd loads simulations and reconciles their ground-truth counterparts.
var truthCmd = &cobra.Command{
	Use:   "truth <sim-index> [sim-index...]",
	Short: "Load simulations together with their ground-truth datasets",
	Long: `Load the given simulations and the truth datasets matched to them.

By default truth indices are derived from the simulation indices. Pass
--truth-indices to override the selection; mismatches between the two sets are
then handled per --on-mismatch.

Examples:
  # Automatic matching
  truth 1 2 3

  # Explicit truth selection, abort on mismatch
  truth 1 2 3 --truth-indices 1,2,3,4 --on-mismatch error

  # Tolerate missing truth files silently
  truth 1 2 3 --on-missing ignore`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTruth,
}

func init() {
	truthCmd.Flags().IntSliceVar(&truthIndices, "truth-indices", nil, "Explicit truth indices (default: derive from simulations)")
	truthCmd.Flags().StringVar(&truthPrefix, "prefix", "", "Truth prefix (overrides configuration)")
	truthCmd.Flags().BoolVar(&truthSkipCache, "skip-cache", false, "Bypass the byte cache")
	truthCmd.Flags().StringVar(&onMissing, "on-missing", "warn", "Policy for missing truth files: warn, error or ignore")
	truthCmd.Flags().StringVar(&onMismatch, "on-mismatch", "warn", "Policy for index mismatches: warn, error or ignore")
	truthCmd.Flags().BoolVar(&truthPrompt, "prompt", false, "Ask for confirmation after a mismatch warning")

	RootCmd.AddCommand(truthCmd)
}

func runTruth(cmd *cobra.Command, args []string) error {
	simIndices, err := parseIndices(args)
	if err != nil {
		return err
	}

	missingPolicy, err := truth.ParsePolicy(onMissing)
	if err != nil {
		return err
	}
	mismatchPolicy, err := truth.ParsePolicy(onMismatch)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	_, l, store, err := bootstrapStore(ctx)
	if err != nil {
		return err
	}

	simulations, err := store.LoadMany(ctx, simIndices, dataset.LoadOptions{SkipCache: truthSkipCache})
	if err != nil {
		return err
	}

	matcher := truth.NewMatcher(store, l, truth.TerminalConfirmer{})
	bundle, err := matcher.TruthForSimulations(ctx, simulations, truth.MatchOptions{
		Options: truth.Options{
			Prefix:    truthPrefix,
			SkipCache: truthSkipCache,
			OnMissing: missingPolicy,
		},
		TruthIndices: truthIndices,
		OnMismatch:   mismatchPolicy,
		Prompt:       truthPrompt,
	})
	if err != nil {
		return err
	}

	printBundle(bundle)
	return nil
}

func printBundle(b *truth.Bundle) {
	fmt.Println("--- Truth Bundle ---")
	fmt.Printf("Simulations:     %v\n", b.SimulationIndices)
	fmt.Printf("Truth requested: %v\n", b.TruthIndicesRequested)
	fmt.Printf("Truth loaded:    %v\n", b.TruthIndicesLoaded())
	fmt.Printf("Full match:      %v\n", b.IsFullMatch())

	if len(b.MissingTruthFiles) > 0 {
		fmt.Printf("Missing files:   %v\n", b.MissingTruthFiles)
	}
	if len(b.MissingForSimulations) > 0 {
		fmt.Printf("Sims w/o truth:  %v\n", b.MissingForSimulations)
	}
	if len(b.ExtraTruth) > 0 {
		fmt.Printf("Extra truth:     %v\n", b.ExtraTruth)
	}
	if len(b.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range b.Warnings {
			fmt.Printf("- %s\n", w)
		}
	}
}
