package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration the way Init does, into a private viper
// instance, and fails on invalid settings.
func Load() (*Config, error) {
	v := viper.New()
	prepare(v)
	addSearchPaths(v)

	if _, err := readIfPresent(v); err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadFromPath reads and validates the configuration file at path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	prepare(v)
	v.SetConfigFile(ExpandHome(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s; %w", path, err)
	}
	return decode(v)
}

// prepare registers the file format, env binding and defaults on v.
func prepare(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
}

func addSearchPaths(v *viper.Viper) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		v.AddConfigPath(dir)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", AppName))
	}
	v.AddConfigPath(".")
}

// readIfPresent reads the first config file found. A missing file is not
// an error.
func readIfPresent(v *viper.Viper) (bool, error) {
	err := v.ReadInConfig()
	if err == nil {
		return true, nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to read config; %w", err)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
