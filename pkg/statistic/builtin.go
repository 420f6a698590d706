package statistic

import (
	"github.com/Sumatoshi-tech/resample/pkg/alg/stats"
)

// Built-in statistic names.
const (
	NameMean           = "mean"
	NameMedian         = "median"
	NameVariance       = "variance"
	NamePVariance      = "pvariance"
	NameStdDev         = "stddev"
	NameSum            = "sum"
	NameMin            = "min"
	NameMax            = "max"
	NameTrimmedMean    = "trimmed_mean"
	NameZeroReciprocal = "zero_reciprocal"
)

// DefaultTrimFraction is the share cut from each tail by trimmed_mean.
const DefaultTrimFraction = 0.1

func infallible(fn func([]float64) float64) func([]float64) (float64, error) {
	return func(values []float64) (float64, error) {
		return fn(values), nil
	}
}

// Builtins returns fresh instances of all built-in statistics.
func Builtins() []Statistic {
	return []Statistic{
		Func{
			Meta: Meta{NameMean, "Mean", "Arithmetic mean of the values.", TypeLocation},
			Fn:   infallible(stats.Mean),
		},
		Func{
			Meta: Meta{NameMedian, "Median", "50th percentile, linearly interpolated between order statistics.", TypeLocation},
			Fn:   infallible(stats.Median),
		},
		Func{
			Meta: Meta{NameTrimmedMean, "Trimmed Mean", "Mean after dropping the lowest and highest 10% of values.", TypeLocation},
			Fn: infallible(func(values []float64) float64 {
				return stats.TrimmedMean(values, DefaultTrimFraction)
			}),
		},
		Func{
			Meta: Meta{NameVariance, "Sample Variance", "Bessel-corrected variance (divides by n-1); 0 for a single value.", TypeSpread},
			Fn:   infallible(stats.SampleVariance),
		},
		Func{
			Meta: Meta{NamePVariance, "Population Variance", "Population variance (divides by n).", TypeSpread},
			Fn: infallible(func(values []float64) float64 {
				_, sd := stats.MeanStdDev(values)

				return sd * sd
			}),
		},
		Func{
			Meta: Meta{NameStdDev, "Sample Std Dev", "Square root of the Bessel-corrected variance.", TypeSpread},
			Fn:   infallible(stats.SampleStdDev),
		},
		Func{
			Meta: Meta{NameSum, "Sum", "Sum of the values.", TypeLocation},
			Fn:   infallible(stats.Sum[float64]),
		},
		Func{
			Meta: Meta{NameMin, "Minimum", "Smallest value.", TypeExtreme},
			Fn:   infallible(stats.Min[float64]),
		},
		Func{
			Meta: Meta{NameMax, "Maximum", "Largest value.", TypeExtreme},
			Fn:   infallible(stats.Max[float64]),
		},
		Func{
			Meta: Meta{
				NameZeroReciprocal, "Zero Reciprocal",
				"1 / (number of zeros). Fails with a division by zero on samples without a zero.",
				TypeTeaching,
			},
			Fn: zeroReciprocal,
		},
	}
}

func zeroReciprocal(values []float64) (float64, error) {
	zeros := 0

	for _, v := range values {
		if v == 0 {
			zeros++
		}
	}

	if zeros == 0 {
		return 0, ErrDivisionByZero
	}

	return 1 / float64(zeros), nil
}

// DefaultRegistry returns a registry populated with Builtins.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, s := range Builtins() {
		// Builtin names are unique.
		_ = r.Register(s)
	}

	return r
}
