package main

import (
	"github.com/spf13/cobra"
)

func newCategoryCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "category <name-or-url>",
		Short: "Harvest a single category by name or listing URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			harvester, cleanup, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = harvester.RunCategory(ctx, args[0])
			return err
		},
	}
}
