// Package config loads client settings from the environment.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the client needs to talk to the backend and keep
// local state.
type Config struct {
	BaseURL         string        `env:"AUBATTLE_API_URL, default=https://admin.aubattle.com/api"`
	WithdrawBaseURL string        `env:"AUBATTLE_WITHDRAW_URL, default=https://backend.aubattle.com/api"`
	HTTPTimeout     time.Duration `env:"AUBATTLE_HTTP_TIMEOUT, default=30s"`
	StateFile       string        `env:"AUBATTLE_STATE_FILE"`
	LogLevel        string        `env:"AUBATTLE_LOG_LEVEL, default=info"`
}

// Load reads configuration from environment variables. StateFile defaults
// to ~/.aubattle/session.json when unset.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load]")
	}
	if cfg.StateFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "[config.Load] resolve home directory")
		}
		cfg.StateFile = filepath.Join(home, ".aubattle", "session.json")
	}
	return &cfg, nil
}
