package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/mcp"
	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/pkg/version"
)

const diagnosticsShutdownTimeout = 5 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes these tools:
  - bootstrap:    bootstrap a named statistic over a sample
  - mean_test:    one-sample z- or t-test of the mean
  - distribution: evaluate pdf, cdf, quantile, mean or stddev of a distribution

With --metrics-addr, Prometheus metrics and a health check are served on
/metrics and /healthz at that address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := startSession(cmd, observability.ModeMCP, func(cfg *config.Config) {
				cfg.Logging.JSON = true

				if debug {
					cfg.Logging.Level = "debug"
				}

				if cmd.Flags().Changed("metrics-addr") {
					cfg.Telemetry.MetricsAddr = metricsAddr
				}
			})
			if err != nil {
				return err
			}
			defer sess.close()

			if addr := sess.cfg.Telemetry.MetricsAddr; addr != "" {
				diag, diagErr := observability.NewDiagnosticsServer(addr, sess.providers.MetricsHandler, sess.logger())
				if diagErr != nil {
					return diagErr
				}

				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), diagnosticsShutdownTimeout)
					defer cancel()

					closeErr := diag.Close(ctx)
					if closeErr != nil {
						sess.logger().Warn("diagnostics shutdown failed", "error", closeErr)
					}
				}()

				sess.logger().Info("diagnostics listening", "addr", diag.Addr())
			}

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			bm, err := observability.NewBootstrapMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Version:  version.Version,
				Logger:   sess.logger(),
				Metrics:  red,
				Recorder: bm,
				Tracer:   sess.providers.Tracer,
				Defaults: sess.cfg,
			})

			sess.logger().Info("mcp server starting", "tools", srv.ListToolNames())

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (e.g. :9464)")

	return cmd
}
