package main

import (
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the toolchain, project and health score",
		Long: `Doctor probes the installed toolchain, inspects the project
layout and reports session and historical metrics together with a
derived health score. It never modifies any project state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			report := app.orch.Diagnose(cmd.Context())
			app.out.Diagnose(report)
			return nil
		},
	}
	return cmd
}
