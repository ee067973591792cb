package main

import (
	"github.com/spf13/cobra"

	"github.com/redstone-os/ignitectl/internal/eventlog"
)

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List session event logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			infos, err := eventlog.List(app.paths.Logs)
			if err != nil {
				return err
			}
			app.out.Logs(infos)
			return nil
		},
	}
	return cmd
}
