package cmd

import (
	"context"
	"fmt"
	"os"

	"cidl/core/config"
	"cidl/core/logger"
	"cidl/core/storage"
	"cidl/feature/dataset"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Persistent connection flags, applied on top of the loaded configuration.
	bucketFlag   string
	endpointFlag string
	writeFlag    bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cidl",
	Short: "CIDL dataset access tool",
	Long: `CIDL provides cached access to simulation and truth datasets stored in
the UHH S3 object store, plus upload and maintenance operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&bucketFlag, "bucket", "", "Bucket name (overrides configuration)")
	RootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Endpoint selector: primary, site-1, site-2 or site-3")
	RootCmd.PersistentFlags().BoolVar(&writeFlag, "write", false, "Connect with write access (default is read-only)")
}

// bootstrap loads configuration, builds the logger and connects a backend with
// the persistent flags applied. Write commands must pass --write; everything
// else runs read-only.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *storage.Backend, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend := storage.NewBackend(cfg.Storage, l)

	opts := storage.ConnectOptions{
		Bucket:   bucketFlag,
		Endpoint: endpointFlag,
	}
	if writeFlag {
		readOnly := false
		opts.ReadOnly = &readOnly
	}

	if _, err := backend.Connect(ctx, opts); err != nil {
		return nil, nil, nil, err
	}

	return cfg, l, backend, nil
}

// bootstrapStore is bootstrap plus a dataset store on top of the backend.
func bootstrapStore(ctx context.Context) (*config.Config, *zap.Logger, *dataset.Store, error) {
	cfg, l, backend, err := bootstrap(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, l, dataset.NewStore(backend, cfg.Dataset, l), nil
}
