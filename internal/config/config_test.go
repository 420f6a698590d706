package config_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
)

func TestValidate_Default(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Default().Validate())
}

func TestEstimatorOptions_SeedAndWorkers(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Bootstrap.Seed = 99
	cfg.Bootstrap.Workers = 3

	sample := []float64{1, 2, 3, 4, 5}
	mean := func(v []float64) (float64, error) {
		s := 0.0
		for _, x := range v {
			s += x
		}

		return s / float64(len(v)), nil
	}

	first, err := bootstrap.New(cfg.EstimatorOptions()...).Run(context.Background(), sample, mean, 200)
	require.NoError(t, err)

	second, err := bootstrap.New(bootstrap.WithSeed(99)).Run(context.Background(), sample, mean, 200)
	require.NoError(t, err)

	assert.Equal(t, second.Values(), first.Values())

	seed, ok := first.Seed()
	assert.True(t, ok)
	assert.Equal(t, uint64(99), seed)
}

func TestEstimatorOptions_ZeroSeedIsRandom(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	set, err := bootstrap.New(cfg.EstimatorOptions()...).
		Run(context.Background(), []float64{1, 2}, func(v []float64) (float64, error) { return v[0], nil }, 10)
	require.NoError(t, err)

	_, ok := set.Seed()
	assert.True(t, ok, "a drawn seed is still recorded for replay")
}

func TestQuantileMethod(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.Equal(t, bootstrap.QuantileEmpirical, cfg.QuantileMethod())

	cfg.Bootstrap.Quantile = "linear"
	assert.Equal(t, bootstrap.QuantileLinear, cfg.QuantileMethod())

	cfg.Bootstrap.Quantile = "bogus"
	assert.Equal(t, bootstrap.QuantileEmpirical, cfg.QuantileMethod())
}

func TestObservability(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.JSON = true
	cfg.Telemetry.OTLPEndpoint = "collector:4317"
	cfg.Telemetry.MetricsAddr = ":9464"
	cfg.Telemetry.OTLPHeaders = map[string]string{"authorization": "Bearer x"}

	obs := cfg.Observability(observability.ModeMCP, "v1.0.0")

	assert.Equal(t, observability.ModeMCP, obs.Mode)
	assert.Equal(t, "v1.0.0", obs.ServiceVersion)
	assert.Equal(t, slog.LevelDebug, obs.LogLevel)
	assert.True(t, obs.LogJSON)
	assert.True(t, obs.Prometheus)
	assert.Equal(t, "collector:4317", obs.OTLPEndpoint)
	assert.Equal(t, map[string]string{"authorization": "Bearer x"}, obs.OTLPHeaders)
}
