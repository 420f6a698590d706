// Package analysis turns bootstrap and mean-test requests into report
// payloads. The CLI commands and the MCP tools share it.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
	"github.com/Sumatoshi-tech/resample/pkg/hypothesis"
	"github.com/Sumatoshi-tech/resample/pkg/statistic"
)

// DefaultStatistic is used when a request names none.
const DefaultStatistic = statistic.NameMean

// BootstrapRequest describes one bootstrap run. Zero fields fall back to the
// runner's configured defaults.
type BootstrapRequest struct {
	Sample     []float64
	Statistic  string
	Replicates int
	Seed       uint64
	// FreshSeed ignores any configured seed and draws a new one.
	FreshSeed  bool
	Workers    int
	Confidence float64
	Quantile   string
	// Compare names a CLT interval kind (normal or t) to report beside the
	// bootstrap interval. Empty skips the comparison.
	Compare string
}

// MeanTestRequest describes a one-sample test of mean == Mu0. A non-zero
// Sigma selects a z-test, otherwise Student's t-test is used.
type MeanTestRequest struct {
	Sample     []float64
	Mu0        float64
	Sigma      float64
	Confidence float64
}

// Runner executes requests. The zero value is usable.
type Runner struct {
	Defaults   *config.Config
	Statistics *statistic.Registry
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Recorder   bootstrap.Recorder
}

func (r *Runner) defaults() *config.Config {
	if r.Defaults == nil {
		return config.Default()
	}

	return r.Defaults
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

func (r *Runner) statistics() *statistic.Registry {
	if r.Statistics == nil {
		return statistic.DefaultRegistry()
	}

	return r.Statistics
}

// Bootstrap runs the request and summarizes the replicates, including the
// statistic observed on the original sample and its bias.
func (r *Runner) Bootstrap(ctx context.Context, req BootstrapRequest) (report.Bootstrap, error) {
	cfg := r.defaults()

	if req.FreshSeed && cfg.Bootstrap.Seed != 0 {
		unseeded := *cfg
		unseeded.Bootstrap.Seed = 0
		cfg = &unseeded
	}

	method := cfg.QuantileMethod()
	if req.Quantile != "" {
		parsed, err := bootstrap.ParseQuantileMethod(req.Quantile)
		if err != nil {
			return report.Bootstrap{}, err
		}

		method = parsed
	}

	kind, err := compareKind(req.Compare)
	if err != nil {
		return report.Bootstrap{}, err
	}

	stat, err := r.statistics().Lookup(orDefault(req.Statistic, DefaultStatistic))
	if err != nil {
		return report.Bootstrap{}, err
	}

	confidence := orDefault(req.Confidence, cfg.Bootstrap.Confidence)

	opts := append(cfg.EstimatorOptions(),
		bootstrap.WithWorkers(orDefault(req.Workers, cfg.Bootstrap.Workers)),
		bootstrap.WithLogger(r.logger()),
		bootstrap.WithTracer(r.Tracer),
		bootstrap.WithRecorder(r.Recorder),
	)

	if req.Seed != 0 {
		opts = append(opts, bootstrap.WithSeed(req.Seed))
	}

	replicates := orDefault(req.Replicates, cfg.Bootstrap.Replicates)

	set, err := bootstrap.New(opts...).Run(ctx, req.Sample, statistic.Bootstrap(stat), replicates)
	if err != nil {
		return report.Bootstrap{}, err
	}

	summary, err := set.Summarize(confidence, method)
	if err != nil {
		return report.Bootstrap{}, err
	}

	observed, err := stat.Compute(req.Sample)
	if err != nil {
		return report.Bootstrap{}, fmt.Errorf("%s on the original sample: %w", stat.Name(), err)
	}

	summary = summary.WithObserved(observed)
	summary.Statistic = stat.Name()
	summary.SampleSize = len(req.Sample)

	out := report.Bootstrap{Summary: summary}

	if kind != "" {
		out.Parametric, err = report.NewComparison(req.Sample, confidence, kind)
		if err != nil {
			return report.Bootstrap{}, err
		}
	}

	return out, nil
}

// MeanTest runs the z- or t-test and the matching confidence interval.
func (r *Runner) MeanTest(req MeanTestRequest) (report.Test, error) {
	var (
		result hypothesis.Result
		err    error
	)

	if req.Sigma != 0 {
		result, err = hypothesis.ZTest(req.Sample, req.Mu0, req.Sigma)
	} else {
		result, err = hypothesis.TTest(req.Sample, req.Mu0)
	}

	if err != nil {
		return report.Test{}, err
	}

	interval, err := result.Interval(orDefault(req.Confidence, r.defaults().Bootstrap.Confidence))
	if err != nil {
		return report.Test{}, err
	}

	r.logger().Debug("mean test finished", "test", result.Test, "n", result.SampleSize, "p_value", result.PValue)

	return report.Test{Result: result, Interval: interval}, nil
}

func compareKind(name string) (hypothesis.IntervalKind, error) {
	if name == "" {
		return "", nil
	}

	return hypothesis.ParseIntervalKind(name)
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}

	return v
}
