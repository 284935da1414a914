// Package config handles configuration for the authgate server, including
// defaults, JSON overlay, environment (optionally seeded from a .env file),
// command-line flags and fail-fast validation.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
)

// Password hashing algorithms accepted by Password.Algorithm.
const (
	PasswordArgon2id = "argon2id"
	PasswordBcrypt   = "bcrypt"
)

// minKeyLength is the shortest HS256 secret accepted, 256 bits.
const minKeyLength = 32

// JWTConfig is the token signing configuration shared by issuer and validator.
//
// Fields:
//   - Key: symmetric HS256 secret, used as its raw (ASCII) bytes.
//   - Issuer / Audience: values written to and required in iss / aud.
//   - DurationInMinutes: token lifetime, positive.
type JWTConfig struct {
	Key               string
	Issuer            string
	Audience          string
	DurationInMinutes int
}

// Duration returns the token lifetime.
func (j JWTConfig) Duration() time.Duration {
	return time.Duration(j.DurationInMinutes) * time.Minute
}

// Config holds runtime settings for the authgate server.
//
// Fields:
//   - HTTPAddress: bind address for the HTTP API.
//   - GRPCAddress: bind address for the gRPC endpoint; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - PasswordAlgorithm: argon2id or bcrypt.
//   - LogLevel: debug, info, warn or error.
//   - Jwt: token signing settings, no defaults.
type Config struct {
	HTTPAddress       string
	GRPCAddress       string
	DatabaseDSN       string
	PasswordAlgorithm string
	LogLevel          string
	Jwt               JWTConfig
}

// LoadDefaults populates Config with development defaults. The Jwt section
// has no defaults and must always be supplied.
func (c *Config) LoadDefaults() {
	c.HTTPAddress = ":8080"
	c.GRPCAddress = ":50051"
	c.DatabaseDSN = ""
	c.PasswordAlgorithm = PasswordArgon2id
	c.LogLevel = "info"
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Jwt.Key == "" {
		errs = append(errs, errors.New("Jwt.Key is required"))
	} else if len(c.Jwt.Key) < minKeyLength {
		errs = append(errs, fmt.Errorf("Jwt.Key must be at least %d bytes, got %d", minKeyLength, len(c.Jwt.Key)))
	}
	if c.Jwt.Issuer == "" {
		errs = append(errs, errors.New("Jwt.Issuer is required"))
	}
	if c.Jwt.Audience == "" {
		errs = append(errs, errors.New("Jwt.Audience is required"))
	}
	if c.Jwt.DurationInMinutes <= 0 {
		errs = append(errs, fmt.Errorf("Jwt.DurationInMinutes must be a positive integer, got %d", c.Jwt.DurationInMinutes))
	}
	if c.HTTPAddress == "" {
		errs = append(errs, errors.New("Server.HTTPAddress is required"))
	}
	switch c.PasswordAlgorithm {
	case PasswordArgon2id, PasswordBcrypt:
	default:
		errs = append(errs, fmt.Errorf("Password.Algorithm %q is not supported (use %s or %s)",
			c.PasswordAlgorithm, PasswordArgon2id, PasswordBcrypt))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("Log.Level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. args are the process arguments without the program name.
// The result is validated; any error means the process must not serve.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
