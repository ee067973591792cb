package main

import (
	"github.com/spf13/cobra"

	"github.com/redstone-os/ignitectl/internal/orchestrator"
)

func buildCmd() *cobra.Command {
	var features []string

	cmd := &cobra.Command{
		Use:   "build [profile]",
		Short: "Build the bootloader for the UEFI target",
		Long: `Build compiles the project for its UEFI target with the given
profile (debug, release or verbose; default debug). The target toolchain
component is installed on first use and remembered for an hour.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := orchestrator.ProfileDebug
			if len(args) == 1 {
				profile = args[0]
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			out := app.orch.Build(cmd.Context(), profile, features)
			app.out.Build(out)
			if !out.Success {
				return errActionFailed
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&features, "features", nil, "cargo features to enable")
	return cmd
}
