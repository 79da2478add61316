package config

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Secret          string        `env:"SECRET" envDefault:"dev_secret"`
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseDriver  string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN     string        `env:"DATABASE_DSN" envDefault:"file:pdv.db?_pragma=foreign_keys(1)"`
	OwnerEmail      string        `env:"OWNER_EMAIL"`
	SessionCookie   string        `env:"SESSION_COOKIE" envDefault:"app_session_id"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SeedProductsCSV string        `env:"SEED_PRODUCTS_CSV"`
}

// Load reads configuration from a .env file, if any, and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}
	switch cfg.DatabaseDriver {
	case "sqlite", "pgx":
	case "postgres":
		cfg.DatabaseDriver = "pgx"
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	return cfg, nil
}
