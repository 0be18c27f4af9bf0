// Package config loads ADBExplorer settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the process-wide settings
type Config struct {
	ADBPath         string        `env:"ADBX_ADB_PATH,default=adb" validate:"required"`
	DownloadsDir    string        `env:"ADBX_DOWNLOADS_DIR"`
	Home            string        `env:"ADBX_HOME"`
	LogLevel        string        `env:"ADBX_LOG_LEVEL,default=info" validate:"oneof=trace debug info warn error"`
	APIPort         int           `env:"ADBX_API_PORT,default=8765" validate:"min=1,max=65535"`
	CommandTimeout  time.Duration `env:"ADBX_COMMAND_TIMEOUT,default=5m" validate:"gt=0"`
	TransferTimeout time.Duration `env:"ADBX_TRANSFER_TIMEOUT,default=30m" validate:"gt=0"`
}

// Load reads an optional .env file from the working directory, then the environment
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()
	return FromEnviron()
}

// FromEnviron builds the config from the current environment only
func FromEnviron() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if cfg.DownloadsDir == "" || cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		if cfg.DownloadsDir == "" {
			cfg.DownloadsDir = filepath.Join(home, "Downloads", "ADB Explorer")
		}
		if cfg.Home == "" {
			cfg.Home = filepath.Join(home, ".adbexplorer")
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// StateFile is where the CLI keeps the selected device and directory
func (c *Config) StateFile() string {
	return filepath.Join(c.Home, "session.md")
}
