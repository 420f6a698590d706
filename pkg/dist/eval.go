package dist

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors.
var (
	ErrUnknownOperation = errors.New("unknown distribution operation")
	ErrNonFiniteResult  = errors.New("result is not finite")
)

// Operations accepted by Evaluate.
const (
	OpPDF      = "pdf"
	OpCDF      = "cdf"
	OpQuantile = "quantile"
	OpMean     = "mean"
	OpStdDev   = "stddev"
)

// Operations returns the operation names accepted by Evaluate.
func Operations() []string {
	return []string{OpCDF, OpMean, OpPDF, OpQuantile, OpStdDev}
}

// Evaluate applies op to d. x is the point for pdf and cdf, the probability
// for quantile, and ignored for mean and stddev. An undefined result, such as
// the mean of a Student-t with nu <= 1, is reported as ErrInvalidParameter.
// Infinite results are returned as is; EvaluateFinite rejects them.
func Evaluate(d Distribution, op string, x float64) (float64, error) {
	var v float64

	switch strings.ToLower(op) {
	case OpPDF:
		v = d.PDF(x)
	case OpCDF:
		v = d.CDF(x)
	case OpQuantile:
		if !validProb(x) {
			return 0, fmt.Errorf("%w: quantile probability must be in [0, 1], got %v", ErrInvalidParameter, x)
		}

		v = d.Quantile(x)
	case OpMean:
		v = d.Mean()
	case OpStdDev:
		v = d.StdDev()
	default:
		return 0, fmt.Errorf("%w: %q (available: %s)", ErrUnknownOperation, op, strings.Join(Operations(), ", "))
	}

	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s %s is undefined", ErrInvalidParameter, d.Name(), op)
	}

	return v, nil
}

// EvaluateFinite is Evaluate with infinite results, such as the normal
// quantile at 0, reported as ErrNonFiniteResult.
func EvaluateFinite(d Distribution, op string, x float64) (float64, error) {
	v, err := Evaluate(d, op, x)
	if err != nil {
		return 0, err
	}

	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %s at %v", ErrNonFiniteResult, d.Name(), strings.ToLower(op), x)
	}

	return v, nil
}
