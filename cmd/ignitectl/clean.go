package main

import (
	"github.com/spf13/cobra"

	"github.com/redstone-os/ignitectl/internal/orchestrator"
)

func cleanCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build artifacts",
		Long: `Clean removes compiler build artifacts. With --full it also
removes the staged distribution tree, invalidates cached prerequisite
checks and resets the historical metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := orchestrator.CleanStandard
			if full {
				scope = orchestrator.CleanFull
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			out := app.orch.Clean(cmd.Context(), scope)
			app.out.Outcome(out.Outcome)
			if !out.Success {
				return errActionFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "also remove dist, cached checks and historical metrics")
	return cmd
}
