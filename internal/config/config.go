// Package config loads resample settings from defaults, an optional YAML
// file and RESAMPLE_* environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
)

// Default values.
const (
	DefaultReplicates   = 1000
	DefaultConfidence   = bootstrap.DefaultConfidence
	DefaultSeed         = 0
	DefaultWorkers      = 1
	DefaultQuantile     = string(bootstrap.QuantileEmpirical)
	DefaultOutputFormat = string(report.FormatText)
	DefaultLogLevel     = "info"
)

// Config is the top-level configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// BootstrapConfig holds estimator settings.
type BootstrapConfig struct {
	Replicates int     `mapstructure:"replicates"`
	Confidence float64 `mapstructure:"confidence"`
	// Seed 0 draws a fresh seed per run.
	Seed     uint64 `mapstructure:"seed"`
	Workers  int    `mapstructure:"workers"`
	Quantile string `mapstructure:"quantile"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string            `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool              `mapstructure:"otlp_insecure"`
	OTLPHeaders  map[string]string `mapstructure:"otlp_headers"`
	// MetricsAddr is the listen address of the MCP server's /metrics endpoint.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Sentinel errors for configuration validation.
var (
	ErrInvalidReplicates = errors.New("bootstrap.replicates must be positive")
	ErrInvalidConfidence = errors.New("bootstrap.confidence must be in (0, 1)")
	ErrInvalidWorkers    = errors.New("bootstrap.workers must be at least 1")
	ErrInvalidQuantile   = errors.New("bootstrap.quantile must be empirical or linear")
	ErrInvalidFormat     = errors.New("output.format must be text, json or yaml")
	ErrInvalidLogLevel   = errors.New("logging.level must be debug, info, warn or error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	err := c.validateBootstrap()
	if err != nil {
		return err
	}

	_, err = report.ParseFormat(c.Output.Format)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	_, err = observability.ParseLevel(c.Logging.Level)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

func (c *Config) validateBootstrap() error {
	b := c.Bootstrap

	if b.Replicates <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidReplicates, b.Replicates)
	}

	if !(b.Confidence > 0 && b.Confidence < 1) {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, b.Confidence)
	}

	if b.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, b.Workers)
	}

	_, err := bootstrap.ParseQuantileMethod(b.Quantile)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidQuantile, b.Quantile)
	}

	return nil
}

// EstimatorOptions translates the bootstrap section into estimator options.
// A zero seed is left out so each run draws its own.
func (c *Config) EstimatorOptions() []bootstrap.Option {
	opts := []bootstrap.Option{bootstrap.WithWorkers(c.Bootstrap.Workers)}

	if c.Bootstrap.Seed != 0 {
		opts = append(opts, bootstrap.WithSeed(c.Bootstrap.Seed))
	}

	return opts
}

// QuantileMethod returns the configured percentile method, falling back to
// empirical for a value Validate would reject.
func (c *Config) QuantileMethod() bootstrap.QuantileMethod {
	method, err := bootstrap.ParseQuantileMethod(c.Bootstrap.Quantile)
	if err != nil {
		return bootstrap.QuantileEmpirical
	}

	return method
}

// Observability builds the telemetry configuration for the given mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.OTLPHeaders = c.Telemetry.OTLPHeaders
	cfg.Prometheus = c.Telemetry.MetricsAddr != ""
	cfg.LogJSON = c.Logging.JSON

	level, err := observability.ParseLevel(c.Logging.Level)
	if err == nil {
		cfg.LogLevel = level
	}

	return cfg
}
