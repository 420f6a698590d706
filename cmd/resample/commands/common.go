// Package commands implements the resample CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/resample/internal/analysis"
	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/internal/sampleio"
	"github.com/Sumatoshi-tech/resample/pkg/version"
)

// Persistent flag names registered on the root command.
const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
	FlagQuiet   = "quiet"
)

// sampleFlags are shared by commands that read a sample.
type sampleFlags struct {
	inputFormat string
	column      string
}

func (sf *sampleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.inputFormat, "input-format", "",
		"Sample format: text, csv, json, yaml (default: from file extension)")
	cmd.Flags().StringVar(&sf.column, "column", "", "CSV column, by header name or zero-based index")
}

// read loads the sample named by args[0], or stdin when args is empty or "-".
func (sf *sampleFlags) read(cmd *cobra.Command, args []string) ([]float64, error) {
	format, err := sampleio.ParseFormat(sf.inputFormat)
	if err != nil {
		return nil, err
	}

	opts := sampleio.Options{Format: format, Column: sf.column}

	path := sampleio.StdinPath
	if len(args) > 0 {
		path = args[0]
	}

	if path == sampleio.StdinPath {
		values, readErr := sampleio.Read(cmd.InOrStdin(), opts)
		if readErr != nil {
			return nil, fmt.Errorf("stdin: %w", readErr)
		}

		return values, nil
	}

	return sampleio.ReadFile(path, opts)
}

// session bundles what a command needs after startup.
type session struct {
	cfg       *config.Config
	providers observability.Providers
}

func (s *session) logger() *slog.Logger {
	return s.providers.Logger
}

// close flushes telemetry.
func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// runner builds an analysis runner wired to the session's telemetry.
func (s *session) runner() (*analysis.Runner, error) {
	bm, err := observability.NewBootstrapMetrics(s.providers.Meter)
	if err != nil {
		return nil, err
	}

	return &analysis.Runner{
		Defaults: s.cfg,
		Logger:   s.providers.Logger,
		Tracer:   s.providers.Tracer,
		Recorder: bm,
	}, nil
}

// startSession loads configuration, applies overrides and initializes
// observability. Callers must defer close.
func startSession(cmd *cobra.Command, mode observability.AppMode, overrides ...func(*config.Config)) (*session, error) {
	cfg, err := config.LoadConfig(stringFlag(cmd, FlagConfig))
	if err != nil {
		return nil, err
	}

	for _, override := range overrides {
		override(cfg)
	}

	obsCfg := cfg.Observability(mode, version.Version)

	switch {
	case boolFlag(cmd, FlagQuiet):
		obsCfg.LogLevel = slog.LevelError
	case boolFlag(cmd, FlagVerbose):
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{cfg: cfg, providers: providers}, nil
}

// outputFormat returns the --format flag if set, else the configured format.
func outputFormat(cmd *cobra.Command, flagValue string, cfg *config.Config) (report.Format, error) {
	if cmd.Flags().Changed("format") {
		return report.ParseFormat(flagValue)
	}

	return report.ParseFormat(cfg.Output.Format)
}

func registerFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", config.DefaultOutputFormat, "Output format: text, json, yaml")
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}

	return v
}

func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return v
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
