// Package config loads service configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file.
	DBPath string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// TokenDuration is how long issued tokens remain valid.
	TokenDuration time.Duration

	// TransferCeiling is the maximum amount per single transfer.
	TransferCeiling decimal.Decimal

	// KafkaBrokers enables transfer-event publishing when non-empty
	// (comma-separated broker addresses).
	KafkaBrokers string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/swiftpay.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenDuration: 24 * time.Hour,
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if d := os.Getenv("TOKEN_DURATION"); d != "" {
		duration, err := time.ParseDuration(d)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOKEN_DURATION: %w", err)
		}
		cfg.TokenDuration = duration
	}

	if c := os.Getenv("TRANSFER_CEILING"); c != "" {
		ceiling, err := decimal.NewFromString(c)
		if err != nil || ceiling.Sign() <= 0 {
			return Config{}, fmt.Errorf("invalid TRANSFER_CEILING: %q", c)
		}
		cfg.TransferCeiling = ceiling
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
