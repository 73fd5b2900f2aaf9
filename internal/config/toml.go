// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Store   StoreConfig   `toml:"store"`
	Coach   CoachConfig   `toml:"coach"`
	Log     LogConfig     `toml:"log"`
	Workout WorkoutConfig `toml:"workout"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// CoachConfig maps coaching service settings.
type CoachConfig struct {
	APIKey  *string   `toml:"api-key"`
	BaseURL *string   `toml:"base-url"`
	Model   *string   `toml:"model"`
	Timeout *Duration `toml:"timeout"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
	JSON  *bool   `toml:"json"`
}

// WorkoutConfig maps active workout settings.
type WorkoutConfig struct {
	RestTick *Duration `toml:"rest-tick"`
}

// Duration is a time.Duration that decodes from TOML strings like "20s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path and applies TITANIUM_*
// environment overrides. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	var cfg FileConfig
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	// Missing .env is the common case.
	_ = godotenv.Load()
}

// APIKeyFromEnv returns the first coaching API key found in the environment.
func APIKeyFromEnv() string {
	for _, name := range []string{"TITANIUM_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func applyEnvOverrides(cfg *FileConfig) error {
	if v := os.Getenv("TITANIUM_DB_PATH"); v != "" {
		cfg.Store.Path = &v
	}
	if v := APIKeyFromEnv(); v != "" && cfg.Coach.APIKey == nil {
		cfg.Coach.APIKey = &v
	}
	if v := os.Getenv("TITANIUM_COACH_BASE_URL"); v != "" {
		cfg.Coach.BaseURL = &v
	}
	if v := os.Getenv("TITANIUM_COACH_MODEL"); v != "" {
		cfg.Coach.Model = &v
	}
	if v := os.Getenv("TITANIUM_COACH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TITANIUM_COACH_TIMEOUT: %w", err)
		}
		cfg.Coach.Timeout = &Duration{Duration: d}
	}
	if v := os.Getenv("TITANIUM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = &v
	}
	if v := os.Getenv("TITANIUM_LOG_FILE"); v != "" {
		cfg.Log.File = &v
	}
	if v := os.Getenv("TITANIUM_LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TITANIUM_LOG_JSON: %w", err)
		}
		cfg.Log.JSON = &b
	}
	return nil
}
