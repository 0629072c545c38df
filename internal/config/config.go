package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings, populated from the environment.
type Config struct {
	Addr      string `env:"ADDR" envDefault:":3001"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:3001"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	CleanupInterval      time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m"`
	EndedGrace           time.Duration `env:"ENDED_GRACE" envDefault:"30m"`
	IdleTimeout          time.Duration `env:"IDLE_TIMEOUT" envDefault:"72h"`
	LobbyDisconnectGrace time.Duration `env:"LOBBY_DISCONNECT_GRACE" envDefault:"30s"`
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	// .env is for local development; absence is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured log level to slog.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
