package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE"          envDefault:"true"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	StatsCron   string `env:"STATS_CRON"   envDefault:"@every 1m" validate:"required"`

	TokenIssuer       string        `env:"TOKEN_ISS,required"           validate:"required"`
	AccessTokenSecret string        `env:"ACCESS_TOKEN_SECRET,required" validate:"required,min=32"`
	TokenTTL          time.Duration `env:"TOKEN_TTL"       envDefault:"5m"  validate:"min=1s"`
	BcryptCost        int           `env:"BCRYPT_COST"     envDefault:"10"  validate:"min=4,max=31"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s" validate:"min=100ms"`
}

// Load reads the configuration from the environment once at startup.
// Missing secrets fail here instead of on the first request.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
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
