// Package config loads the process configuration of the server and CLI.
package config

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ARGO_FUND_ADDRESS.
const EnvPrefix = "ARGO_FUND"

// Config is the process configuration.
type Config struct {
	// Address is the HTTP listen address.
	Address  string `mapstructure:"address" yaml:"address" validate:"required"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	// ResultsFolder receives result files written by CLI runs.
	ResultsFolder   string        `mapstructure:"results_folder" yaml:"results_folder"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Address:         ":8080",
		LogLevel:        "info",
		ResultsFolder:   "results",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads the configuration. Values come, lowest precedence first, from
// Default, the optional YAML file, and ARGO_FUND_* environment variables.
// The environment is first populated from envFile, or from .env in the
// working directory when envFile is empty; a missing default .env is ignored.
func Load(envFile, configFile string) (*Config, error) {
	if err := loadEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode configuration", err)
	}

	cfg.Address = strings.TrimSpace(cfg.Address)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return &cfg, nil
}

func loadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to load env file %s", envFile)
		}

		return nil
	}

	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeReadFailed, "failed to load .env", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("address", d.Address)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("results_folder", d.ResultsFolder)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
}
