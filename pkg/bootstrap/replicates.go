package bootstrap

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// QuantileMethod selects how percentile interval bounds are read from the
// sorted replicates.
type QuantileMethod string

const (
	// QuantileEmpirical is the inverse of the empirical CDF (no interpolation).
	QuantileEmpirical QuantileMethod = "empirical"
	// QuantileLinear interpolates linearly between adjacent order statistics.
	QuantileLinear QuantileMethod = "linear"
)

// DefaultConfidence is the confidence level used when none is configured.
const DefaultConfidence = 0.95

// ParseQuantileMethod validates a quantile method name. The empty string maps
// to QuantileEmpirical.
func ParseQuantileMethod(name string) (QuantileMethod, error) {
	switch QuantileMethod(name) {
	case "", QuantileEmpirical:
		return QuantileEmpirical, nil
	case QuantileLinear:
		return QuantileLinear, nil
	default:
		return "", fmt.Errorf("%w: unknown quantile method %q", ErrInvalidArgument, name)
	}
}

func (m QuantileMethod) cumulant() stat.CumulantKind {
	if m == QuantileLinear {
		return stat.LinInterp
	}

	return stat.Empirical
}

// ReplicateSet is the ordered sequence of statistic values produced by a
// bootstrap run, one per trial, in generation order.
type ReplicateSet struct {
	values []float64
	seed   uint64
	seeded bool
}

// Len returns the number of replicates.
func (r ReplicateSet) Len() int {
	return len(r.values)
}

// Values returns a copy of the replicate values in generation order.
func (r ReplicateSet) Values() []float64 {
	return slices.Clone(r.values)
}

// Seed returns the seed the replicates were generated from. ok is false when
// the run consumed a caller-supplied Source instead.
func (r ReplicateSet) Seed() (seed uint64, ok bool) {
	return r.seed, r.seeded
}

// Mean returns the mean of the replicates.
func (r ReplicateSet) Mean() float64 {
	if len(r.values) == 0 {
		return 0
	}

	return stat.Mean(r.values, nil)
}

// Variance returns the Bessel-corrected variance of the replicates: the sum
// of squared deviations from the replicate mean divided by B−1. It is 0 for
// fewer than two replicates.
func (r ReplicateSet) Variance() float64 {
	if len(r.values) < 2 {
		return 0
	}

	return stat.Variance(r.values, nil)
}

// StdErr returns the bootstrap standard error, the square root of Variance.
func (r ReplicateSet) StdErr() float64 {
	return math.Sqrt(r.Variance())
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Level float64 `json:"level" yaml:"level"`
}

// Contains reports whether x lies within the closed interval.
func (iv Interval) Contains(x float64) bool {
	return x >= iv.Lower && x <= iv.Upper
}

// Width returns Upper − Lower.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// PercentileInterval returns the percentile confidence interval at the given
// level in (0, 1): the α/2 and 1−α/2 quantiles of the sorted replicates,
// where α = 1 − level.
func (r ReplicateSet) PercentileInterval(level float64, method QuantileMethod) (Interval, error) {
	if len(r.values) == 0 {
		return Interval{}, fmt.Errorf("%w: empty replicate set", ErrInvalidArgument)
	}

	if !(level > 0 && level < 1) {
		return Interval{}, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidArgument, level)
	}

	sorted := slices.Clone(r.values)
	slices.Sort(sorted)

	alpha := 1 - level
	kind := method.cumulant()

	return Interval{
		Lower: stat.Quantile(alpha/2, kind, sorted, nil),
		Upper: stat.Quantile(1-alpha/2, kind, sorted, nil),
		Level: level,
	}, nil
}

// Summary bundles the derived numbers of a replicate set. It is the payload
// handed to reporting and transport layers.
type Summary struct {
	Statistic  string         `json:"statistic,omitempty"  yaml:"statistic,omitempty"`
	Observed   *float64       `json:"observed,omitempty"   yaml:"observed,omitempty"`
	SampleSize int            `json:"sample_size"          yaml:"sample_size"`
	Replicates int            `json:"replicates"           yaml:"replicates"`
	Seed       *uint64        `json:"seed,omitempty"       yaml:"seed,omitempty"`
	Mean       float64        `json:"mean"                 yaml:"mean"`
	Variance   float64        `json:"variance"             yaml:"variance"`
	StdErr     float64        `json:"std_err"              yaml:"std_err"`
	Bias       *float64       `json:"bias,omitempty"       yaml:"bias,omitempty"`
	Interval   Interval       `json:"interval"             yaml:"interval"`
	Method     QuantileMethod `json:"quantile_method"      yaml:"quantile_method"`
}

// Summarize computes a Summary at the given confidence level.
func (r ReplicateSet) Summarize(level float64, method QuantileMethod) (Summary, error) {
	interval, err := r.PercentileInterval(level, method)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Replicates: r.Len(),
		Mean:       r.Mean(),
		Variance:   r.Variance(),
		StdErr:     r.StdErr(),
		Interval:   interval,
		Method:     method,
	}

	if seed, ok := r.Seed(); ok {
		summary.Seed = &seed
	}

	return summary, nil
}

// WithObserved records the statistic evaluated on the original sample and
// derives the bootstrap bias estimate (replicate mean − observed).
func (s Summary) WithObserved(observed float64) Summary {
	bias := s.Mean - observed
	s.Observed = &observed
	s.Bias = &bias

	return s
}
