package main

import (
	"github.com/spf13/cobra"

	"github.com/redstone-os/ignitectl/internal/orchestrator"
)

func testCmd() *cobra.Command {
	var parallel bool

	cmd := &cobra.Command{
		Use:   "test [kind]",
		Short: "Run the test suite",
		Long: `Test runs the project's tests on the host: all (default), unit
(library tests only) or integration (tests/ directory only).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := orchestrator.TestAll
			if len(args) == 1 {
				kind = args[0]
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			out := app.orch.Test(cmd.Context(), kind, parallel)
			app.out.Test(out)
			if !out.Success {
				return errActionFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&parallel, "parallel", false, "let the test harness pick its own thread count")
	return cmd
}
