package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"cidl/feature/transfer"

	"github.com/spf13/cobra"
)

var (
	uploadPrefix      string
	uploadConcurrency int
	uploadExtensions  []string
	yesConfirm        bool
)

// uploadCmd uploads a single file or a whole directory. Directories are
// uploaded concurrently, skipping keys already present under the prefix.
var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file or directory to the object store",
	Long: `Upload a local file or directory under a key prefix.

Requires a writable session (--write). Directory uploads skip files whose
target key already exists and report per-file outcomes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		_, l, backend, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		svc := transfer.NewService(backend, l)

		if !info.IsDir() {
			result, err := svc.UploadFile(cmd.Context(), path, uploadPrefix)
			if err != nil {
				return err
			}
			if !result.OK() {
				return result.Err
			}
			fmt.Printf("Uploaded %s -> %s\n", result.Name, result.Key)
			return nil
		}

		results, err := svc.UploadDirectory(cmd.Context(), path, uploadPrefix, transfer.UploadOptions{
			Concurrency: uploadConcurrency,
			Extensions:  uploadExtensions,
		})
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.OK() {
				fmt.Printf("  ok    %s -> %s\n", r.Name, r.Key)
			} else {
				failed++
				fmt.Printf("  FAIL  %s: %v\n", r.Name, r.Err)
			}
		}
		fmt.Printf("\n%d uploaded, %d failed\n", len(results)-failed, failed)

		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(results))
		}
		return nil
	},
}

// deleteCmd removes a single object by key.
var deleteCmd = &cobra.Command{
	Use:   "delete <object-key>",
	Short: "Delete a single object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmDestructiveAction(fmt.Sprintf("delete object %q", args[0])) {
			fmt.Println("Cancelled. No changes were made.")
			return nil
		}

		_, l, backend, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		svc := transfer.NewService(backend, l)
		return svc.DeleteObject(cmd.Context(), args[0])
	},
}

// deletePrefixCmd removes every object under a prefix.
var deletePrefixCmd = &cobra.Command{
	Use:   "delete-prefix <prefix>",
	Short: "Delete every object under a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmDestructiveAction(fmt.Sprintf("delete ALL objects under prefix %q", args[0])) {
			fmt.Println("Cancelled. No changes were made.")
			return nil
		}

		_, l, backend, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		svc := transfer.NewService(backend, l)
		deleted, err := svc.DeletePrefix(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %d objects\n", deleted)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadPrefix, "prefix", "", "Key prefix to upload under")
	uploadCmd.Flags().IntVar(&uploadConcurrency, "concurrency", transfer.DefaultConcurrency, "Parallel uploads for directories")
	uploadCmd.Flags().StringSliceVar(&uploadExtensions, "ext", nil, "File suffixes to upload (default: .parquet, .csv, .json)")

	deleteCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	deletePrefixCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(uploadCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(deletePrefixCmd)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(action string) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to %s: ", action)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
