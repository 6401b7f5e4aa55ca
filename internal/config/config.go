// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is the full service configuration. A .env file is honored when
// present; real environment variables win.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Port        string `env:"PORT" envDefault:"8080"`

	JWTSecret         string `env:"JWT_SECRET,required"`
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH,required"`

	OverseerRoleID int64 `env:"OVERSEER_ROLE_ID"`

	ListingQuota  int           `env:"LISTING_QUOTA" envDefault:"3"`
	PendingTTL    time.Duration `env:"PENDING_TTL" envDefault:"10m"`
	MaxListingAge time.Duration `env:"MAX_LISTING_AGE" envDefault:"72h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	TeardownGrace time.Duration `env:"TEARDOWN_GRACE" envDefault:"5s"`
}

// Load reads .env (if any) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
