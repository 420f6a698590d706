// Package dist exposes a small Distribution capability interface (density,
// CDF, quantile, sampling) over the distributions used in introductory
// hypothesis testing: normal, chi-squared, Student-t and binomial.
// Numerical work is delegated to gonum's distuv package.
package dist

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sentinel errors.
var (
	ErrUnknownDistribution = errors.New("unknown distribution")
	ErrInvalidParameter    = errors.New("invalid distribution parameter")
)

// Distribution names accepted by New.
const (
	NameNormal     = "normal"
	NameChiSquared = "chisquared"
	NameStudentT   = "studentt"
	NameBinomial   = "binomial"
)

// Distribution is a univariate probability distribution.
type Distribution interface {
	// Name returns the registry name of the distribution family.
	Name() string
	// PDF returns the density at x (the probability mass for discrete families).
	PDF(x float64) float64
	// CDF returns P(X <= x).
	CDF(x float64) float64
	// Quantile returns the inverse CDF at p. It is NaN for p outside [0, 1].
	Quantile(p float64) float64
	// Sample draws n variates from src. A nil src uses the global generator.
	Sample(src rand.Source, n int) []float64
	Mean() float64
	StdDev() float64
}

// Normal is the Gaussian distribution N(Mu, Sigma²).
type Normal struct {
	Mu    float64
	Sigma float64
}

// StandardNormal is N(0, 1).
var StandardNormal = Normal{Mu: 0, Sigma: 1}

func (d Normal) impl(src rand.Source) distuv.Normal {
	return distuv.Normal{Mu: d.Mu, Sigma: d.Sigma, Src: src}
}

func (d Normal) Name() string { return NameNormal }
func (d Normal) PDF(x float64) float64 { return d.impl(nil).Prob(x) }
func (d Normal) CDF(x float64) float64 { return d.impl(nil).CDF(x) }
func (d Normal) Mean() float64 { return d.Mu }
func (d Normal) StdDev() float64 { return d.Sigma }

func (d Normal) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.impl(nil).Quantile(p)
}

func (d Normal) Sample(src rand.Source, n int) []float64 {
	return draw(d.impl(src).Rand, n)
}

// ChiSquared is the chi-squared distribution with K degrees of freedom.
type ChiSquared struct {
	K float64
}

func (d ChiSquared) impl(src rand.Source) distuv.ChiSquared {
	return distuv.ChiSquared{K: d.K, Src: src}
}

func (d ChiSquared) Name() string { return NameChiSquared }
func (d ChiSquared) PDF(x float64) float64 { return d.impl(nil).Prob(x) }
func (d ChiSquared) CDF(x float64) float64 { return d.impl(nil).CDF(x) }
func (d ChiSquared) Mean() float64 { return d.K }
func (d ChiSquared) StdDev() float64 { return math.Sqrt(2 * d.K) }

func (d ChiSquared) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.impl(nil).Quantile(p)
}

func (d ChiSquared) Sample(src rand.Source, n int) []float64 {
	return draw(d.impl(src).Rand, n)
}

// StudentT is the standard Student's t distribution with Nu degrees of freedom.
type StudentT struct {
	Nu float64
}

func (d StudentT) impl(src rand.Source) distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: d.Nu, Src: src}
}

func (d StudentT) Name() string { return NameStudentT }
func (d StudentT) PDF(x float64) float64 { return d.impl(nil).Prob(x) }
func (d StudentT) CDF(x float64) float64 { return d.impl(nil).CDF(x) }

// Mean is 0 for Nu > 1 and undefined (NaN) otherwise.
func (d StudentT) Mean() float64 {
	if d.Nu <= 1 {
		return math.NaN()
	}

	return 0
}

// StdDev is infinite for 1 < Nu <= 2 and undefined (NaN) for Nu <= 1.
func (d StudentT) StdDev() float64 {
	return d.impl(nil).StdDev()
}

func (d StudentT) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.impl(nil).Quantile(p)
}

func (d StudentT) Sample(src rand.Source, n int) []float64 {
	return draw(d.impl(src).Rand, n)
}

// MaxBinomialTrials bounds Binomial.N so the quantile search stays in int range.
const MaxBinomialTrials = math.MaxInt32

// Binomial is the number of successes in N trials with success probability P.
type Binomial struct {
	N float64
	P float64
}

func (d Binomial) impl(src rand.Source) distuv.Binomial {
	return distuv.Binomial{N: d.N, P: d.P, Src: src}
}

func (d Binomial) Name() string { return NameBinomial }

// PDF returns the probability mass at x; it is 0 for non-integer x.
func (d Binomial) PDF(x float64) float64 { return d.impl(nil).Prob(x) }
func (d Binomial) CDF(x float64) float64 { return d.impl(nil).CDF(x) }
func (d Binomial) Mean() float64 { return d.N * d.P }
func (d Binomial) StdDev() float64 { return math.Sqrt(d.N * d.P * (1 - d.P)) }

// Quantile returns the smallest k in [0, N] with CDF(k) >= p. It is NaN when
// N exceeds MaxBinomialTrials.
func (d Binomial) Quantile(p float64) float64 {
	if !validProb(p) || d.N > MaxBinomialTrials {
		return math.NaN()
	}

	n := int(d.N)
	k := sort.Search(n+1, func(k int) bool {
		return d.CDF(float64(k)) >= p
	})

	return float64(min(k, n))
}

func (d Binomial) Sample(src rand.Source, n int) []float64 {
	return draw(d.impl(src).Rand, n)
}

func validProb(p float64) bool {
	return p >= 0 && p <= 1
}

func draw(next func() float64, n int) []float64 {
	out := make([]float64, max(n, 0))

	for i := range out {
		out[i] = next()
	}

	return out
}

// New builds a distribution by name from named parameters:
//
//	normal:     mu (default 0), sigma (default 1, > 0)
//	chisquared: k (> 0)
//	studentt:   nu (> 0)
//	binomial:   n (integer in [0, MaxBinomialTrials]), p (in [0, 1])
func New(name string, params map[string]float64) (Distribution, error) {
	get := func(key string, def float64) float64 {
		if v, ok := params[key]; ok {
			return v
		}

		return def
	}

	switch name {
	case NameNormal:
		d := Normal{Mu: get("mu", 0), Sigma: get("sigma", 1)}
		if !(d.Sigma > 0) {
			return nil, fmt.Errorf("%w: normal sigma must be > 0, got %v", ErrInvalidParameter, d.Sigma)
		}

		return d, nil
	case NameChiSquared:
		d := ChiSquared{K: get("k", math.NaN())}
		if !(d.K > 0) {
			return nil, fmt.Errorf("%w: chisquared k must be > 0, got %v", ErrInvalidParameter, d.K)
		}

		return d, nil
	case NameStudentT:
		d := StudentT{Nu: get("nu", math.NaN())}
		if !(d.Nu > 0) {
			return nil, fmt.Errorf("%w: studentt nu must be > 0, got %v", ErrInvalidParameter, d.Nu)
		}

		return d, nil
	case NameBinomial:
		d := Binomial{N: get("n", math.NaN()), P: get("p", math.NaN())}
		if !(d.N >= 0) || d.N != math.Trunc(d.N) {
			return nil, fmt.Errorf("%w: binomial n must be a non-negative integer, got %v", ErrInvalidParameter, d.N)
		}

		if d.N > MaxBinomialTrials {
			return nil, fmt.Errorf("%w: binomial n must be at most %d, got %v", ErrInvalidParameter, MaxBinomialTrials, d.N)
		}

		if !validProb(d.P) {
			return nil, fmt.Errorf("%w: binomial p must be in [0, 1], got %v", ErrInvalidParameter, d.P)
		}

		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDistribution, name, Names())
	}
}

// Names returns the distribution names accepted by New.
func Names() []string {
	return []string{NameBinomial, NameChiSquared, NameNormal, NameStudentT}
}
