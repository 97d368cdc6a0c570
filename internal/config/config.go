package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	StateDB string `koanf:"state_db"` // override for the queue state database path

	// Context continuation settings
	Refill RefillConfig `koanf:"refill"`
}

// RefillConfig tunes when and how the context segment is topped up.
type RefillConfig struct {
	LowWater  int `koanf:"low_water"`  // trigger below this many upcoming context items (default: 5)
	BatchSize int `koanf:"batch_size"` // tracks requested per fetch (default: 20)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in state_db
	if cfg.StateDB != "" {
		cfg.StateDB = expandPath(cfg.StateDB)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/upnext/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "upnext", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetRefillConfig returns the refill configuration with defaults applied.
func (c *Config) GetRefillConfig() RefillConfig {
	cfg := c.Refill

	if cfg.LowWater <= 0 || cfg.LowWater > 100 {
		cfg.LowWater = 5
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > 500 {
		cfg.BatchSize = 20
	}

	return cfg
}
