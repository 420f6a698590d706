package dist_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/resample/pkg/alg/stats"
	"github.com/Sumatoshi-tech/resample/pkg/dist"
)

const tolerance = 1e-5

func TestNormal(t *testing.T) {
	t.Parallel()

	d := dist.StandardNormal

	assert.Equal(t, dist.NameNormal, d.Name())
	assert.InDelta(t, 0.3989423, d.PDF(0), tolerance)
	assert.InDelta(t, 0.5, d.CDF(0), tolerance)
	assert.InDelta(t, 0.9750021, d.CDF(1.96), tolerance)
	assert.InDelta(t, 1.959964, d.Quantile(0.975), tolerance)
	assert.InDelta(t, -1.644854, d.Quantile(0.05), tolerance)
	assert.InDelta(t, 0.0, d.Mean(), tolerance)
	assert.InDelta(t, 1.0, d.StdDev(), tolerance)
}

func TestChiSquared(t *testing.T) {
	t.Parallel()

	d := dist.ChiSquared{K: 2}

	// With k = 2 the CDF is 1 - exp(-x/2).
	assert.InDelta(t, 1-math.Exp(-1.5), d.CDF(3), tolerance)
	assert.InDelta(t, 0.5*math.Exp(-1.5), d.PDF(3), tolerance)
	assert.InDelta(t, 5.991465, d.Quantile(0.95), tolerance)
	assert.InDelta(t, 2.0, d.Mean(), tolerance)
	assert.InDelta(t, 2.0, d.StdDev(), tolerance)
}

func TestStudentT(t *testing.T) {
	t.Parallel()

	d := dist.StudentT{Nu: 10}

	assert.InDelta(t, 0.5, d.CDF(0), tolerance)
	assert.InDelta(t, 2.228139, d.Quantile(0.975), tolerance)
	assert.InDelta(t, 0.0, d.Mean(), tolerance)
	assert.InDelta(t, math.Sqrt(10.0/8.0), d.StdDev(), tolerance)
	assert.True(t, math.IsNaN(dist.StudentT{Nu: 1}.Mean()))

	// Heavier tails than the normal.
	assert.Greater(t, d.Quantile(0.975), dist.StandardNormal.Quantile(0.975))
}

func TestBinomial(t *testing.T) {
	t.Parallel()

	d := dist.Binomial{N: 10, P: 0.5}

	assert.InDelta(t, 0.24609375, d.PDF(5), tolerance)
	assert.InDelta(t, 0.0, d.PDF(4.5), tolerance)
	assert.InDelta(t, 0.623046875, d.CDF(5), tolerance)
	assert.InDelta(t, 5.0, d.Quantile(0.5), tolerance)
	assert.InDelta(t, 0.0, d.Quantile(0), tolerance)
	assert.InDelta(t, 10.0, d.Quantile(1), tolerance)
	assert.InDelta(t, 5.0, d.Mean(), tolerance)
	assert.InDelta(t, math.Sqrt(2.5), d.StdDev(), tolerance)
}

func TestBinomial_LargeN(t *testing.T) {
	t.Parallel()

	d := dist.Binomial{N: 1e6, P: 0.5}
	assert.InDelta(t, 5e5, d.Quantile(0.5), 1)

	huge := dist.Binomial{N: 1e20, P: 0.5}
	assert.True(t, math.IsNaN(huge.Quantile(0.5)))
}

func TestQuantile_OutOfRangeIsNaN(t *testing.T) {
	t.Parallel()

	distributions := []dist.Distribution{
		dist.StandardNormal,
		dist.ChiSquared{K: 3},
		dist.StudentT{Nu: 4},
		dist.Binomial{N: 5, P: 0.3},
	}

	for _, d := range distributions {
		assert.True(t, math.IsNaN(d.Quantile(-0.1)), d.Name())
		assert.True(t, math.IsNaN(d.Quantile(1.1)), d.Name())
	}
}

func TestSample_ReproducibleAndCentered(t *testing.T) {
	t.Parallel()

	distributions := []dist.Distribution{
		dist.Normal{Mu: 10, Sigma: 2},
		dist.ChiSquared{K: 4},
		dist.StudentT{Nu: 30},
		dist.Binomial{N: 20, P: 0.25},
	}

	for _, d := range distributions {
		t.Run(d.Name(), func(t *testing.T) {
			t.Parallel()

			first := d.Sample(rand.NewPCG(1, 2), 5000)
			second := d.Sample(rand.NewPCG(1, 2), 5000)

			require.Len(t, first, 5000)
			assert.Equal(t, first, second)

			// Five standard errors of the sample mean.
			assert.InDelta(t, d.Mean(), stats.Mean(first), 5*d.StdDev()/math.Sqrt(5000))
		})
	}
}

func TestSample_NonPositiveCount(t *testing.T) {
	t.Parallel()

	assert.Empty(t, dist.StandardNormal.Sample(nil, 0))
	assert.Empty(t, dist.StandardNormal.Sample(nil, -3))
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dist    string
		params  map[string]float64
		wantErr error
	}{
		{name: "normal_defaults", dist: dist.NameNormal, params: nil},
		{name: "normal_custom", dist: dist.NameNormal, params: map[string]float64{"mu": 3, "sigma": 0.5}},
		{name: "normal_bad_sigma", dist: dist.NameNormal, params: map[string]float64{"sigma": 0}, wantErr: dist.ErrInvalidParameter},
		{name: "chisquared", dist: dist.NameChiSquared, params: map[string]float64{"k": 3}},
		{name: "chisquared_missing_k", dist: dist.NameChiSquared, params: nil, wantErr: dist.ErrInvalidParameter},
		{name: "studentt", dist: dist.NameStudentT, params: map[string]float64{"nu": 5}},
		{name: "studentt_bad_nu", dist: dist.NameStudentT, params: map[string]float64{"nu": -1}, wantErr: dist.ErrInvalidParameter},
		{name: "binomial", dist: dist.NameBinomial, params: map[string]float64{"n": 10, "p": 0.2}},
		{name: "binomial_fractional_n", dist: dist.NameBinomial, params: map[string]float64{"n": 2.5, "p": 0.2}, wantErr: dist.ErrInvalidParameter},
		{name: "binomial_bad_p", dist: dist.NameBinomial, params: map[string]float64{"n": 4, "p": 1.5}, wantErr: dist.ErrInvalidParameter},
		{name: "binomial_n_too_large", dist: dist.NameBinomial, params: map[string]float64{"n": 1e20, "p": 0.5}, wantErr: dist.ErrInvalidParameter},
		{name: "binomial_n_at_limit", dist: dist.NameBinomial, params: map[string]float64{"n": dist.MaxBinomialTrials, "p": 0.5}},
		{name: "unknown", dist: "cauchy", params: nil, wantErr: dist.ErrUnknownDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := dist.New(tt.dist, tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.dist, d.Name())
		})
	}
}
