package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oliviaoracle/olivia/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "olivia.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaultsToMemoryBackend(t *testing.T) {
	path := writeConfig(t, "secret_seed: \"2a\"\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != config.BackendMemory {
		t.Fatalf("Backend = %q, want %q", cfg.Storage.Backend, config.BackendMemory)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: mongo\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate: want error for unknown backend")
	}
}

func TestValidateRequiresDSNForSQLBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: sql\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate: want error for missing dsn")
	}
}

func TestRequireSecretSeed(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: memory\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.RequireSecretSeed(); err == nil {
		t.Fatalf("RequireSecretSeed: want error when secret_seed absent")
	}
}

func TestEnvOverridesSecretSeed(t *testing.T) {
	path := writeConfig(t, "secret_seed: \"from-file\"\n")
	t.Setenv("OLIVIA_SECRET_SEED", "from-env")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SecretSeed != "from-env" {
		t.Fatalf("SecretSeed = %q, want env override", cfg.SecretSeed)
	}
}
