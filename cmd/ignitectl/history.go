package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent actions across sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			if app.hist == nil {
				return errors.New("action history is unavailable")
			}
			entries, err := app.hist.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			app.out.History(entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}
