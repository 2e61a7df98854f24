// Package config loads tool configuration from a config file, falling back
// to built-in defaults. Command-line flags override file values.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults for the configuration surface consumed by the grouping engine.
const (
	DefaultThreshold       = 0.9
	DefaultStructuralLimit = 500
	DefaultWorkers         = 8
)

// Config holds all tool settings.
type Config struct {
	Threshold float64
	Database  struct {
		Path string
	}
	Scan struct {
		StructuralLimit int  `mapstructure:"structural_limit"`
		SizePrefilter   bool `mapstructure:"size_prefilter"`
	}
	Performance struct {
		Workers int
	}
	Logging struct {
		Level string
	}
}

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "imagedup.db"
	}
	return filepath.Join(home, ".imagedup", "imagedup.db")
}

// Load reads the configuration from ~/.imagedup/config.yaml or ./config.yaml.
// A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.imagedup")
	v.AddConfigPath(".")

	v.SetDefault("threshold", DefaultThreshold)
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("scan.structural_limit", DefaultStructuralLimit)
	v.SetDefault("scan.size_prefilter", true)
	v.SetDefault("performance.workers", DefaultWorkers)
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
