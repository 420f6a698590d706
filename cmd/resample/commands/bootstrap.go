package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/resample/internal/analysis"
	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
)

// BootstrapCommand holds the flags of the bootstrap command.
type BootstrapCommand struct {
	sample     sampleFlags
	statistic  string
	replicates int
	seed       uint64
	workers    int
	confidence float64
	quantile   string
	compare    string
	format     string
}

// NewBootstrapCommand creates the bootstrap command.
func NewBootstrapCommand() *cobra.Command {
	bc := &BootstrapCommand{}

	cmd := &cobra.Command{
		Use:   "bootstrap [sample-file]",
		Short: "Estimate a statistic's sampling distribution by resampling",
		Long: `Resample the observed values with replacement B times, evaluate the
statistic on every resample and report the replicate mean, variance,
standard error and percentile confidence interval.

The sample is read from the given file, or from stdin when the file is
omitted or "-". Files ending in .lz4 are decompressed first.`,
		Example: `  resample bootstrap data.csv --column latency -s median -B 5000 --seed 42
  seq 1 100 | resample bootstrap -s stddev --compare t -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: bc.run,
	}

	bc.sample.register(cmd)
	cmd.Flags().StringVarP(&bc.statistic, "statistic", "s", analysis.DefaultStatistic,
		"Statistic to bootstrap (see 'resample statistics')")
	cmd.Flags().IntVarP(&bc.replicates, "replicates", "B", config.DefaultReplicates, "Number of bootstrap trials")
	cmd.Flags().Uint64Var(&bc.seed, "seed", config.DefaultSeed, "Random seed (0 = draw a fresh one)")
	cmd.Flags().IntVar(&bc.workers, "workers", config.DefaultWorkers, "Parallel workers")
	cmd.Flags().Float64Var(&bc.confidence, "confidence", config.DefaultConfidence, "Confidence level in (0, 1)")
	cmd.Flags().StringVar(&bc.quantile, "quantile", config.DefaultQuantile, "Percentile method: empirical, linear")
	cmd.Flags().StringVar(&bc.compare, "compare", "", "Also show the CLT interval for the mean: normal, t")
	registerFormatFlag(cmd, &bc.format)

	return cmd
}

func (bc *BootstrapCommand) run(cmd *cobra.Command, args []string) error {
	sess, err := startSession(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	format, err := outputFormat(cmd, bc.format, sess.cfg)
	if err != nil {
		return err
	}

	values, err := bc.sample.read(cmd, args)
	if err != nil {
		return err
	}

	runner, err := sess.runner()
	if err != nil {
		return err
	}

	sess.logger().Debug("bootstrap starting", "n", len(values), "statistic", bc.statistic)

	req, err := bc.request(cmd, values)
	if err != nil {
		return err
	}

	result, err := runner.Bootstrap(cmd.Context(), req)
	if err != nil {
		return err
	}

	return report.WriteBootstrap(out(cmd), format, result)
}

// request copies explicitly set flags; unset ones fall back to the config.
// Explicit zero values are rejected rather than read as "use the default".
func (bc *BootstrapCommand) request(cmd *cobra.Command, values []float64) (analysis.BootstrapRequest, error) {
	req := analysis.BootstrapRequest{
		Sample:    values,
		Statistic: bc.statistic,
		Compare:   bc.compare,
	}

	flags := cmd.Flags()

	if flags.Changed("replicates") {
		if bc.replicates <= 0 {
			return req, fmt.Errorf("%w: replicates must be positive, got %d", bootstrap.ErrInvalidArgument, bc.replicates)
		}

		req.Replicates = bc.replicates
	}

	if flags.Changed("seed") {
		req.Seed = bc.seed
		req.FreshSeed = bc.seed == 0
	}

	if flags.Changed("workers") {
		req.Workers = bc.workers
	}

	if flags.Changed("confidence") {
		if !(bc.confidence > 0 && bc.confidence < 1) {
			return req, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", bootstrap.ErrInvalidArgument, bc.confidence)
		}

		req.Confidence = bc.confidence
	}

	if flags.Changed("quantile") {
		req.Quantile = bc.quantile
	}

	return req, nil
}
