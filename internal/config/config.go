package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

type Config struct {
	ServerPort      string        `env:"SERVER_PORT,default=8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	RedisURL        string        `env:"REDIS_URL"`
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTExpiry       time.Duration `env:"JWT_EXPIRY,default=24h"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT,default=5s"`
	SessionBuffer   int           `env:"SESSION_BUFFER,default=32"`
	EchoToSender    bool          `env:"ECHO_TO_SENDER,default=true"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and tuning bounds.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("invalid JWT_EXPIRY format")
	}
	if c.DispatchTimeout <= 0 {
		return errors.New("DISPATCH_TIMEOUT must be positive")
	}
	if c.SessionBuffer <= 0 {
		return errors.New("SESSION_BUFFER must be positive")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS. An empty result means any origin is accepted.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
