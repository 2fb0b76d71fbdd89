package main

import (
	"github.com/spf13/cobra"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
)

func newAllCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Harvest every registered category",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			harvester, cleanup, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := harvester.RunAll(ctx)
			if err != nil {
				return err
			}

			// Individual category failures are reported in the summary and do
			// not fail the process; the run itself completed.
			if len(summary.CategoryFailures) > 0 {
				logger.WarnObj("run completed with category failures", "failed_categories", summary.CategoryFailures)
			}
			return nil
		},
	}
}
