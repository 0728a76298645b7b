package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the auth service.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Table store backend: "http" (hosted store), "postgres" (self-hosted)
	// or "memory" (local development only).
	StoreBackend string `env:"STORE_BACKEND" envDefault:"http"`
	StoreBaseURL string `env:"STORE_BASE_URL"`
	StoreAPIKey  string `env:"STORE_API_KEY"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Optional: enables the Redis-backed registration lock for
	// multi-instance deployments.
	RedisAddr string `env:"REDIS_ADDR"`

	JWTSecret  string        `env:"JWT_SECRET" envDefault:"dev-secret-change"`
	JWTIssuer  string        `env:"JWT_ISSUER" envDefault:"sitebase-auth"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// Load reads environment variables, optionally from a .env file if present.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Production reports whether the service runs in a production environment.
// Session cookies are Secure-flagged only in production.
func (c Config) Production() bool {
	return c.AppEnv == "production"
}
