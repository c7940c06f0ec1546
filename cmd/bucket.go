package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsLimit int

// lsCmd lists object keys under a prefix.
var lsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List object keys under a prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		_, _, backend, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		keys, err := backend.ListKeys(cmd.Context(), prefix, lsLimit)
		if err != nil {
			return err
		}

		for _, key := range keys {
			fmt.Println(key)
		}
		fmt.Printf("\n%d objects\n", len(keys))
		return nil
	},
}

// summaryCmd prints bucket-wide object count and total size.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show bucket object count and total size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, backend, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		summary, err := backend.Summary(cmd.Context())
		if err != nil {
			return err
		}

		mode := "read-only"
		if !summary.ReadOnly {
			mode = "write"
		}

		fmt.Println("--- Bucket Summary ---")
		fmt.Printf("Bucket:    %s\n", summary.Bucket)
		fmt.Printf("Endpoint:  %s\n", summary.Endpoint)
		fmt.Printf("Mode:      %s\n", mode)
		fmt.Printf("Objects:   %d\n", summary.ObjectCount)
		fmt.Printf("Size:      %.2f GiB\n", summary.TotalSizeGB)
		return nil
	},
}

// statCmd shows a single object's metadata without downloading it.
var statCmd = &cobra.Command{
	Use:   "stat <object-key>",
	Short: "Show object metadata without downloading the payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, backend, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		info, err := backend.StatKey(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Key:           %s\n", info.Key)
		fmt.Printf("Size:          %d bytes\n", info.Size)
		fmt.Printf("ETag:          %s\n", info.ETag)
		fmt.Printf("Last modified: %s\n", info.LastModified)
		return nil
	},
}

func init() {
	lsCmd.Flags().IntVar(&lsLimit, "limit", 0, "Maximum number of keys to list (0 = all)")

	RootCmd.AddCommand(lsCmd)
	RootCmd.AddCommand(summaryCmd)
	RootCmd.AddCommand(statCmd)
}
