package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attribench",
		Short: "attribench - scoring harness for knowledge-attribution benchmarks",
		Long: `attribench scores model response batches against knowledge-attribution
benchmarks: analytic accuracy, citation quality, factual grounding, and
uncertainty calibration.

It loads a suite spec, computes per-metric ordinal scores from each
response batch, and reports a weighted overall score alongside an
independent pass gate.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newCollectCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
