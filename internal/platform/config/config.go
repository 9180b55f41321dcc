// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config reads kassa settings from the environment with caarlos0/env.

Both binaries call [Load] once at startup and pass the result down by pointer.
Nothing here is mutated after Load returns.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// minSecretLength matches the HS256 key size.
const minSecretLength = 32

// Config is the full runtime configuration of cmd/api and cmd/seed.
type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// PostgreSQL
	DatabaseURL      string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"25"`
	DatabaseMinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"2"`

	// MigrationPath replaces the embedded migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Redis backs the authorization cache. Empty URL or zero TTL disables it.
	RedisURL      string        `env:"REDIS_URL"`
	AuthzCacheTTL time.Duration `env:"AUTHZ_CACHE_TTL" envDefault:"5m"`

	// Access tokens
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"kassa"`
	JWTTTL    time.Duration `env:"JWT_TTL"    envDefault:"24h"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// AllowedOrigins is ignored in development, where every origin passes.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	SeedAdmin SeedAdmin `envPrefix:"SEED_ADMIN_"`
}

// SeedAdmin is the bootstrap administrator provisioned by cmd/seed.
type SeedAdmin struct {
	Email    string `env:"EMAIL"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Enabled reports whether every SEED_ADMIN_* variable is set.
func (admin SeedAdmin) Enabled() bool {
	return admin.Email != "" && admin.Username != "" && admin.Password != ""
}

// Load parses and checks the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config_parse_failed: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("config_invalid: %w", err)
	}
	return cfg, nil
}

// check rejects combinations env tags cannot express.
func (c *Config) check() error {
	var problems []error

	if len(c.JWTSecret) < minSecretLength {
		problems = append(problems, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.JWTTTL <= 0 {
		problems = append(problems, errors.New("JWT_TTL must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.DatabaseMinConns < 0 || c.DatabaseMaxConns < 1 || c.DatabaseMinConns > c.DatabaseMaxConns {
		problems = append(problems, errors.New("DATABASE_MIN_CONNS must be within [0, DATABASE_MAX_CONNS]"))
	}

	return errors.Join(problems...)
}

// IsOriginAllowed implements the CORS origin policy.
func (c *Config) IsOriginAllowed(origin string) bool {
	if c.IsDevelopment() {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
