// Package main provides the entry point for the resample CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/resample/cmd/resample/commands"
	"github.com/Sumatoshi-tech/resample/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resample",
		Short: "Bootstrap estimation and classical inference for numeric samples",
		Long: `resample estimates the sampling distribution of a statistic by the
nonparametric bootstrap and reports its standard error and percentile
confidence interval, next to classical z/t results.

Commands:
  bootstrap   Bootstrap a statistic over a sample
  ttest       One-sample z- or t-test of the mean
  dist        Evaluate or sample a probability distribution
  statistics  List available statistics
  mcp         Serve the tools over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP(commands.FlagVerbose, "v", false, "verbose output (debug logging)")
	flags.BoolP(commands.FlagQuiet, "q", false, "suppress everything but errors on stderr")
	flags.String(commands.FlagConfig, "", "config file (default: .resample.yaml in ., ./config or ~/.config/resample)")

	rootCmd.AddCommand(commands.NewBootstrapCommand())
	rootCmd.AddCommand(commands.NewTTestCommand())
	rootCmd.AddCommand(commands.NewDistCommand())
	rootCmd.AddCommand(commands.NewStatisticsCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resample %s\n", version.String())
		},
	}
}
