// Package config resolves application settings from an optional YAML
// file and environment overrides. The result is an explicit struct
// passed to constructors; there is no process-global configuration
// state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "TEXTPRESS_CONFIG"
	dbDirEnv      = "TEXTPRESS_DB_DIR"
	dbFileEnv     = "TEXTPRESS_DB"
	logLevelEnv   = "TEXTPRESS_LOG_LEVEL"

	defaultDBDir  = "./data"
	defaultDBFile = "textpress.db"
	defaultLevel  = "info"
)

// Config holds the settings required across the application
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig describes where the embedded database file lives
type DatabaseConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A missing config file is not an error; defaults apply.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: cannot parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbDirEnv); v != "" {
		c.Database.Dir = v
	}
	if v := os.Getenv(dbFileEnv); v != "" {
		c.Database.File = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Dir != "" {
		base.Database.Dir = override.Database.Dir
	}
	if override.Database.File != "" {
		base.Database.File = override.Database.File
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Dir: defaultDBDir, File: defaultDBFile},
		Logging:  LoggingConfig{Level: defaultLevel},
	}
}
