// Copyright 2025 Certen Protocol
//
// Package config loads Olivia's YAML configuration file: a flat struct,
// a Load that applies environment-variable overrides via getEnv-style
// helpers, and a Validate enforcing the secret/backend rules the rest
// of the oracle depends on.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Database backends Olivia's storage contract has a reference
// implementation for.
const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
)

// StorageConfig configures which storage.Store backend to construct.
type StorageConfig struct {
	// Backend is "memory" or "sql"; any other value is an "unknown
	// database backend" configuration error.
	Backend string `yaml:"backend"`
	// DSN is the Postgres connection string, required when Backend is
	// "sql".
	DSN string `yaml:"dsn"`
}

// Config is Olivia's flat configuration struct. SecretSeed is required
// by the secret-bearing CLI subcommands (add, run, derive); its absence
// is a user-visible error enforced by RequireSecretSeed, not by the
// loader or Validate.
type Config struct {
	// SecretSeed is the hex-encoded 64-byte root Seed. Required for
	// add/run/derive; absent for db init/check-config.
	SecretSeed string `yaml:"secret_seed"`

	Storage StorageConfig `yaml:"storage"`

	// ListenAddr is the REST surface's bind address (external
	// collaborator; carried here as loaded, Validate does not check
	// it).
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls component logger verbosity; Olivia's own
	// loggers use the standard log package and do not filter by level,
	// but the field is carried for forward compatibility with a
	// leveled-logging REST layer.
	LogLevel string `yaml:"log_level"`
}

// Load reads and parses the YAML file at path, then applies
// environment-variable overrides: OLIVIA_SECRET_SEED, OLIVIA_DB_BACKEND,
// OLIVIA_DB_DSN, OLIVIA_LISTEN_ADDR, OLIVIA_LOG_LEVEL.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{
		Storage: StorageConfig{Backend: BackendMemory},
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.SecretSeed = getEnv("OLIVIA_SECRET_SEED", cfg.SecretSeed)
	cfg.Storage.Backend = getEnv("OLIVIA_DB_BACKEND", cfg.Storage.Backend)
	cfg.Storage.DSN = getEnv("OLIVIA_DB_DSN", cfg.Storage.DSN)
	cfg.ListenAddr = getEnv("OLIVIA_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getEnv("OLIVIA_LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// RequireSecretSeed enforces that secret-bearing commands (add, run,
// derive) have a configured secret_seed; absence is a user-visible
// error, not a panic or a zero-value seed.
func (c *Config) RequireSecretSeed() error {
	if c.SecretSeed == "" {
		return fmt.Errorf("config: secret_seed is required for this command")
	}
	return nil
}

// Validate checks the parts of Config every subcommand needs regardless
// of whether it touches secret material: principally, that the storage
// backend is one olivia.oracle actually ships.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
		// no further requirements
	case BackendSQL:
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required when storage.backend is %q", BackendSQL)
		}
	default:
		return fmt.Errorf("config: unknown database backend %q (want %q or %q)", c.Storage.Backend, BackendMemory, BackendSQL)
	}
	return nil
}
