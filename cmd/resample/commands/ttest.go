package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/resample/internal/analysis"
	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/internal/report"
)

// NewTTestCommand creates the ttest command.
func NewTTestCommand() *cobra.Command {
	var (
		sample     sampleFlags
		req        analysis.MeanTestRequest
		confidence float64
		format     string
	)

	cmd := &cobra.Command{
		Use:   "ttest [sample-file]",
		Short: "One-sample test of the mean with a CLT confidence interval",
		Long: `Test H0: mean == mu0 against the two-sided alternative. Student's t-test is
used unless --sigma gives a known population standard deviation, in which
case a z-test is run. The matching confidence interval is reported as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := startSession(cmd, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			f, err := outputFormat(cmd, format, sess.cfg)
			if err != nil {
				return err
			}

			req.Sample, err = sample.read(cmd, args)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("confidence") {
				req.Confidence = confidence
			}

			runner, err := sess.runner()
			if err != nil {
				return err
			}

			result, err := runner.MeanTest(req)
			if err != nil {
				return err
			}

			return report.WriteTest(out(cmd), f, result)
		},
	}

	sample.register(cmd)
	cmd.Flags().Float64Var(&req.Mu0, "mu0", 0, "Hypothesized mean")
	cmd.Flags().Float64Var(&req.Sigma, "sigma", 0, "Known population standard deviation (selects a z-test)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence level in (0, 1) (default: from config, 0.95)")
	registerFormatFlag(cmd, &format)

	return cmd
}
