package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/errors"
)

// newViperInstance creates a new Viper instance with standard TEMPO configuration.
// This includes environment variable prefix (TEMPO_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TEMPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption returns the decode hooks used when unmarshalling.
// Durations are accepted as strings ("1s", "2m30s").
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence:
// environment variables (TEMPO_* prefix), then the global config file under
// the TEMPO home, then built-in defaults. Missing config files are expected
// and not an error.
//
// The context parameter is accepted for API consistency; config reads are
// fast local I/O and are not cancelled mid-flight.
func Load(_ context.Context, tempoHome string) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v, tempoHome); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(v)
}

// loadGlobalConfig merges the global config file into v if it exists.
func loadGlobalConfig(v *viper.Viper, tempoHome string) error {
	path, err := GlobalConfigPath(tempoHome)
	if err != nil {
		return err
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		if isConfigNotFoundError(err) || os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// GlobalConfigPath returns the path of the global config file. An empty
// tempoHome resolves to ~/.tempo.
func GlobalConfigPath(tempoHome string) (string, error) {
	if tempoHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		tempoHome = filepath.Join(home, constants.TempoHome)
	}
	return filepath.Join(tempoHome, constants.GlobalConfigName), nil
}
