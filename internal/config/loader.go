package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".resample"
	configType      = "yaml"
	envPrefix       = "RESAMPLE"
	envKeySeparator = "_"
)

// LoadConfig loads configuration from defaults, file and env vars, in
// increasing precedence. A non-empty configPath must exist. Otherwise
// .resample.yaml is searched in the working directory, ./config and
// $HOME/.config/resample; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, ".config", "resample"))
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env var is set.
func Default() *Config {
	return &Config{
		Bootstrap: BootstrapConfig{
			Replicates: DefaultReplicates,
			Confidence: DefaultConfidence,
			Seed:       DefaultSeed,
			Workers:    DefaultWorkers,
			Quantile:   DefaultQuantile,
		},
		Output:  OutputConfig{Format: DefaultOutputFormat},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("bootstrap.replicates", DefaultReplicates)
	viperCfg.SetDefault("bootstrap.confidence", DefaultConfidence)
	viperCfg.SetDefault("bootstrap.seed", DefaultSeed)
	viperCfg.SetDefault("bootstrap.workers", DefaultWorkers)
	viperCfg.SetDefault("bootstrap.quantile", DefaultQuantile)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", false)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
}
