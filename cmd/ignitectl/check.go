package main

import (
	"github.com/spf13/cobra"

	"github.com/redstone-os/ignitectl/internal/orchestrator"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [kind]",
		Short: "Run verification checks",
		Long: `Check runs static analysis, format and lint checks: check, fmt,
clippy or all (default all). Checks whose tool is not installed are
reported as not applicable rather than failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := orchestrator.CheckAll
			if len(args) == 1 {
				kind = args[0]
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			out := app.orch.Check(cmd.Context(), kind)
			app.out.Check(out)
			if !out.Success {
				return errActionFailed
			}
			return nil
		},
	}
	return cmd
}
