// Package main provides the ignitectl CLI entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.4.0"

var (
	flagRoot    string
	flagPlain   bool
	flagVerbose bool
)

func main() {
	// a user interrupt kills the in-flight child process; completed
	// sub-step metrics are flushed before the cancellation surfaces
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "ignitectl",
		Short: "Build orchestration for the Ignite bootloader",
		Long: `ignitectl drives the Ignite toolchain: build, test, check,
distribute and clean, with per-session event logs, cross-session
metrics and a derived project health score.

Every executed command's output is streamed, classified and appended
to the session log under .ignitectl/log/.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root (default: IGNITECTL_ROOT or working directory)")
	rootCmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "plain output without color or tables")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose event-log framing")

	rootCmd.AddCommand(
		buildCmd(),
		testCmd(),
		checkCmd(),
		distCmd(),
		cleanCmd(),
		doctorCmd(),
		logsCmd(),
		historyCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errActionFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
