package main

import (
	"github.com/spf13/cobra"

	"github.com/redstone-os/ignitectl/internal/orchestrator"
)

func distCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dist [profile]",
		Short: "Build and stage a distributable image tree",
		Long: `Dist builds the project (release by default) and stages the
bootable layout under dist/: the binary at EFI/BOOT/BOOTX64.EFI,
auxiliary files under boot/, and a manifest.json written last so a
manifest's presence always means a complete staging.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := orchestrator.ProfileRelease
			if len(args) == 1 {
				profile = args[0]
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			out := app.orch.Distribute(cmd.Context(), profile)
			app.out.Distribute(out)
			if !out.Success {
				return errActionFailed
			}
			return nil
		},
	}
	return cmd
}
