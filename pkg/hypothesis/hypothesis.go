// Package hypothesis provides the parametric counterparts of the bootstrap:
// z-scores, one-sample z and t tests, and CLT-based confidence intervals for
// the mean.
package hypothesis

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/resample/pkg/alg/stats"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
	"github.com/Sumatoshi-tech/resample/pkg/dist"
)

// ErrInvalidArgument is returned for inputs a test cannot be computed on.
var ErrInvalidArgument = errors.New("invalid argument")

// IntervalKind selects the reference distribution of MeanCI.
type IntervalKind string

// Interval kinds.
const (
	// KindNormal uses the standard normal critical value (large-sample CLT).
	KindNormal IntervalKind = "normal"
	// KindT uses Student's t with n-1 degrees of freedom.
	KindT IntervalKind = "t"
)

// ParseIntervalKind maps a name to an IntervalKind. The empty string selects KindT.
func ParseIntervalKind(name string) (IntervalKind, error) {
	switch IntervalKind(name) {
	case "", KindT:
		return KindT, nil
	case KindNormal:
		return KindNormal, nil
	default:
		return "", fmt.Errorf("%w: unknown interval kind %q", ErrInvalidArgument, name)
	}
}

// Test names reported in Result.
const (
	TestZ = "z"
	TestT = "t"
)

// Result is the outcome of a one-sample location test.
type Result struct {
	Test       string  `json:"test" yaml:"test"`
	SampleSize int     `json:"sample_size" yaml:"sample_size"`
	Mean       float64 `json:"mean" yaml:"mean"`
	Mu0        float64 `json:"mu0" yaml:"mu0"`
	StdErr     float64 `json:"std_err" yaml:"std_err"`
	Statistic  float64 `json:"statistic" yaml:"statistic"`
	DF         int     `json:"df,omitempty" yaml:"df,omitempty"`
	PValue     float64 `json:"p_value" yaml:"p_value"`
}

// Reject reports whether the two-sided test rejects at significance alpha.
func (r Result) Reject(alpha float64) bool {
	return r.PValue < alpha
}

// Interval returns the confidence interval for the mean implied by the test:
// mean ± c·StdErr with c from the standard normal for a z-test or t(DF)
// otherwise.
func (r Result) Interval(level float64) (bootstrap.Interval, error) {
	if !(level > 0 && level < 1) {
		return bootstrap.Interval{}, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidArgument, level)
	}

	var ref dist.Distribution = dist.StandardNormal
	if r.Test == TestT {
		ref = dist.StudentT{Nu: float64(r.DF)}
	}

	margin := ref.Quantile(1-(1-level)/2) * r.StdErr

	return bootstrap.Interval{Lower: r.Mean - margin, Upper: r.Mean + margin, Level: level}, nil
}

// ZScore standardizes x against N(mu, sigma²).
func ZScore(x, mu, sigma float64) (float64, error) {
	if !(sigma > 0) {
		return 0, fmt.Errorf("%w: sigma must be > 0, got %v", ErrInvalidArgument, sigma)
	}

	return (x - mu) / sigma, nil
}

// StandardError returns s/sqrt(n) with s the Bessel-corrected standard deviation.
func StandardError(sample []float64) (float64, error) {
	if len(sample) < 2 {
		return 0, fmt.Errorf("%w: standard error needs at least 2 values, got %d", ErrInvalidArgument, len(sample))
	}

	return stats.SampleStdDev(sample) / math.Sqrt(float64(len(sample))), nil
}

// ZTest runs a two-sided one-sample z-test of mean == mu0 with known sigma.
func ZTest(sample []float64, mu0, sigma float64) (Result, error) {
	if len(sample) == 0 {
		return Result{}, fmt.Errorf("%w: empty sample", ErrInvalidArgument)
	}

	n := len(sample)
	mean := stats.Mean(sample)
	se := sigma / math.Sqrt(float64(n))

	z, err := ZScore(mean, mu0, se)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Test:       TestZ,
		SampleSize: n,
		Mean:       mean,
		Mu0:        mu0,
		StdErr:     se,
		Statistic:  z,
		PValue:     twoSided(dist.StandardNormal, z),
	}, nil
}

// TTest runs a two-sided one-sample Student t-test of mean == mu0.
func TTest(sample []float64, mu0 float64) (Result, error) {
	se, err := StandardError(sample)
	if err != nil {
		return Result{}, err
	}

	if se == 0 {
		return Result{}, fmt.Errorf("%w: sample has zero variance", ErrInvalidArgument)
	}

	n := len(sample)
	mean := stats.Mean(sample)
	t := (mean - mu0) / se

	return Result{
		Test:       TestT,
		SampleSize: n,
		Mean:       mean,
		Mu0:        mu0,
		StdErr:     se,
		Statistic:  t,
		DF:         n - 1,
		PValue:     twoSided(dist.StudentT{Nu: float64(n - 1)}, t),
	}, nil
}

// MeanCI returns the CLT confidence interval mean ± c·s/sqrt(n), where c is
// the 1-α/2 quantile of the normal or t(n-1) distribution.
func MeanCI(sample []float64, level float64, kind IntervalKind) (bootstrap.Interval, error) {
	if !(level > 0 && level < 1) {
		return bootstrap.Interval{}, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidArgument, level)
	}

	se, err := StandardError(sample)
	if err != nil {
		return bootstrap.Interval{}, err
	}

	var ref dist.Distribution

	switch kind {
	case KindNormal:
		ref = dist.StandardNormal
	case KindT:
		ref = dist.StudentT{Nu: float64(len(sample) - 1)}
	default:
		return bootstrap.Interval{}, fmt.Errorf("%w: unknown interval kind %q", ErrInvalidArgument, kind)
	}

	mean := stats.Mean(sample)
	margin := ref.Quantile(1-(1-level)/2) * se

	return bootstrap.Interval{Lower: mean - margin, Upper: mean + margin, Level: level}, nil
}

// twoSided returns P(|X| >= |stat|) for a distribution symmetric about 0.
func twoSided(d dist.Distribution, stat float64) float64 {
	return 2 * d.CDF(-math.Abs(stat))
}
