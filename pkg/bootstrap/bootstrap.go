// Package bootstrap implements the nonparametric bootstrap: it estimates the
// sampling distribution of a statistic by repeatedly resampling an observed
// sample with replacement and evaluating the statistic on each resample.
//
// The replicate set it returns carries the derived summaries callers usually
// need: replicate mean, Bessel-corrected variance, standard error, and
// percentile confidence intervals.
package bootstrap

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors.
var (
	// ErrInvalidArgument is returned for an empty sample, a non-positive
	// replicate count, a nil statistic, or an out-of-range confidence level.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStatisticEvaluation is returned when the statistic fails on a
	// resample, either by returning an error or a non-finite value.
	ErrStatisticEvaluation = errors.New("statistic evaluation failed")
	// ErrNonFinite is wrapped into ErrStatisticEvaluation when the statistic
	// returns NaN or an infinity.
	ErrNonFinite = errors.New("statistic returned a non-finite value")
)

// Statistic maps a resample to a single real number. It must not retain the
// slice it is given; the slice is owned by the estimator.
type Statistic func(resample []float64) (float64, error)

// TwoSampleStatistic maps a pair of independent resamples to a real number,
// e.g. a difference of means.
type TwoSampleStatistic func(a, b []float64) (float64, error)

// Source supplies uniform integer draws over [0, n). *math/rand/v2.Rand
// satisfies it.
type Source interface {
	IntN(n int) int
}

// Bootstrap draws replicates resamples of len(sample) values from sample,
// uniformly with replacement, using src, and evaluates stat on each one.
// Trials run sequentially in generation order, so the same src state yields
// the same ReplicateSet. sample is never modified.
func Bootstrap(sample []float64, stat Statistic, replicates int, src Source) (ReplicateSet, error) {
	err := validate(len(sample), replicates, stat != nil)
	if err != nil {
		return ReplicateSet{}, err
	}

	if src == nil {
		return ReplicateSet{}, fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}

	values := make([]float64, replicates)
	resample := make([]float64, len(sample))

	for trial := range replicates {
		value, evalErr := runTrial(trial, sample, resample, stat, src)
		if evalErr != nil {
			return ReplicateSet{}, evalErr
		}

		values[trial] = value
	}

	return ReplicateSet{values: values}, nil
}

func validate(sampleLen, replicates int, hasStat bool) error {
	if sampleLen == 0 {
		return fmt.Errorf("%w: sample must not be empty", ErrInvalidArgument)
	}

	if replicates <= 0 {
		return fmt.Errorf("%w: replicates must be positive, got %d", ErrInvalidArgument, replicates)
	}

	if !hasStat {
		return fmt.Errorf("%w: nil statistic", ErrInvalidArgument)
	}

	return nil
}

// draw fills resample with len(resample) values picked uniformly with
// replacement from sample.
func draw(sample, resample []float64, src Source) {
	n := len(sample)

	for i := range resample {
		resample[i] = sample[src.IntN(n)]
	}
}

// runTrial performs one resample-and-evaluate step. resample is scratch space
// of len(sample).
func runTrial(trial int, sample, resample []float64, stat Statistic, src Source) (float64, error) {
	draw(sample, resample, src)

	return evaluate(trial, func() (float64, error) { return stat(resample) })
}

// evaluate calls the statistic and turns an error or a NaN/Inf result into
// an ErrStatisticEvaluation failure for that trial.
func evaluate(trial int, call func() (float64, error)) (float64, error) {
	value, err := call()
	if err != nil {
		return 0, evaluationError(trial, err)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, evaluationError(trial, ErrNonFinite)
	}

	return value, nil
}

// evaluationError wraps cause so that errors.Is matches both
// ErrStatisticEvaluation and cause.
func evaluationError(trial int, cause error) error {
	return fmt.Errorf("%w: trial %d: %w", ErrStatisticEvaluation, trial, cause)
}
