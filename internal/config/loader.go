package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides: the key
// interaction.hydrogen_bond.angle_cutoff is read from
// HBPROF_INTERACTION_HYDROGEN_BOND_ANGLE_CUTOFF.
const envPrefix = "HBPROF"

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setViperDefaults(v)
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	return v
}

func readFile(configPath string) (*viper.Viper, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return v, nil
}

// decode turns the merged viper state into a defaulted, validated Config.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// Load reads the YAML file at configPath with HBPROF_* overrides on top.
func Load(configPath string) (*Config, error) {
	v, err := readFile(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadFromEnv builds a Config from defaults and HBPROF_* variables only.
func LoadFromEnv() (*Config, error) {
	return decode(newViper(""))
}

// LoadOrDefault is Load for a non-empty path and LoadFromEnv otherwise, so
// every command runs without a config file.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}
	return LoadFromEnv()
}

// MustLoad is Load for main packages; it panics on error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch calls onChange with the reloaded Config each time configPath is
// written.  Reloads that fail to decode go to onError, if set, and are
// otherwise dropped.  Only the log level is applied at runtime; interaction
// cutoffs stay fixed for the life of a class.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v, err := readFile(configPath)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(v)
		switch {
		case err == nil:
			onChange(cfg)
		case onError != nil:
			onError(err)
		}
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending
