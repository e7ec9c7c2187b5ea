package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// UserPoolConfig describes the identity-provider user pool the orchestrator
// refreshes tokens against.
type UserPoolConfig struct {
	Region   string `env:"CREDMAN_REGION"`
	PoolID   string `env:"CREDMAN_USER_POOL_ID"`
	ClientID string `env:"CREDMAN_CLIENT_ID"`

	// Endpoint overrides the provider URL derived from Region. Mainly for
	// local stacks and tests.
	Endpoint string `env:"CREDMAN_ENDPOINT"`
}

// AuthConfig holds identity-provider configuration. A nil or incomplete
// user-pool block means token management is not active: callers treat that
// as "not signed in", never as an error.
type AuthConfig struct {
	UserPool *UserPoolConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*AuthConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	var pool UserPoolConfig
	if err := env.Parse(&pool); err != nil {
		return nil, fmt.Errorf("failed to parse environment configuration: %w", err)
	}

	cfg := &AuthConfig{}
	if pool != (UserPoolConfig{}) {
		cfg.UserPool = &pool
	}
	return cfg, nil
}

// Validate checks that the user-pool block carries everything a token
// refresh needs.
func (c *AuthConfig) Validate() error {
	if c == nil || c.UserPool == nil {
		return fmt.Errorf("no user pool configured")
	}
	if c.UserPool.ClientID == "" {
		return fmt.Errorf("user pool client ID is missing")
	}
	if c.UserPool.PoolID == "" {
		return fmt.Errorf("user pool ID is missing")
	}
	if c.UserPool.Region == "" && c.UserPool.Endpoint == "" {
		return fmt.Errorf("user pool needs a region or an explicit endpoint")
	}
	return nil
}

// URL returns the provider endpoint the refresh call is sent to.
func (p *UserPoolConfig) URL() string {
	if p.Endpoint != "" {
		return p.Endpoint
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", p.Region)
}
