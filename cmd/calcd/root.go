package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calcd",
		Short: "calcd - line-delimited RPC server for small computations",
		Long: `Calcd is a local RPC server exposing a fixed set of small computations.

It listens on a unix domain socket, reads one newline-delimited JSON request
per connection, and writes back a newline-delimited JSON response. Results
travel as strings with an out-of-band result_type tag.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			// slog.SetLogLoggerLevel requires Go 1.22; this toolchain is 1.21.
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	}

	// Add subcommands
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCallCommand())
	cmd.AddCommand(newMethodsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
