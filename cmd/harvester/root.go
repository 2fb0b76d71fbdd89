package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/app"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/config"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
)

type cliOptions struct {
	categoriesFile string
	sinksFile      string
	workers        int
	maxPages       int
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "harvester",
		Short:         "Harvests an AI tools directory into translated tool records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.categoriesFile, "categories", "", "path to the categories file (overrides config)")
	root.PersistentFlags().StringVar(&opts.sinksFile, "sinks", "", "path to the sinks file (overrides config)")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "per-category worker count (overrides config)")
	root.PersistentFlags().IntVar(&opts.maxPages, "max-pages", 0, "per-category page ceiling (overrides config)")

	root.AddCommand(
		newAllCmd(opts),
		newCategoryCmd(opts),
	)

	return root
}

// setup loads config, applies CLI overrides and assembles the runtime.
// The returned cleanup closes the logger and storage.
func setup(ctx context.Context, opts *cliOptions) (*app.Harvester, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, opts)

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	logger.InfoObj("harvester starting", "config", cfg)

	harvester, err := app.NewHarvester(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize harvester", "error", err)
		logger.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := harvester.Close(); err != nil {
			logger.ErrorObj("storage close failed", "error", err)
		}
		logger.Close()
	}
	return harvester, cleanup, nil
}

func applyOverrides(cfg *config.Config, opts *cliOptions) {
	if opts.categoriesFile != "" {
		cfg.CategoriesFile = opts.categoriesFile
	}
	if opts.sinksFile != "" {
		cfg.SinksFile = opts.sinksFile
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.maxPages > 0 {
		cfg.MaxPagesPerCategory = opts.maxPages
	}
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
