package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process configuration, loaded once at startup and passed
// down explicitly. There is no package-level config state.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// AuthMode selects the identity verifier: "firebase" verifies ID tokens
	// against Firebase Auth, "jwt" verifies local HS256 tokens (development).
	AuthMode  string `env:"AUTH_MODE" envDefault:"firebase"`
	JWTSecret string `env:"JWT_SECRET"`

	// StoreDriver selects the Answer Store backend: "firestore" or "memory".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"firestore"`

	// FirestoreProjectID overrides the project id extracted from the service
	// account credentials.
	FirestoreProjectID string `env:"FIRESTORE_PROJECT_ID"`
}

// Load reads an optional .env file, then parses the environment into a
// Config. Invalid combinations fail here so the process dies at startup
// rather than on the first request.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional; real deployments use env vars

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.AuthMode {
	case "firebase":
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q (want firebase or jwt)", cfg.AuthMode)
	}

	switch cfg.StoreDriver {
	case "firestore", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want firestore or memory)", cfg.StoreDriver)
	}

	return &cfg, nil
}
