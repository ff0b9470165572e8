package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/fxledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(config.ConfigFileEnv, "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.ForbidSelfReference {
		t.Fatalf("expected self-reference check to be off by default")
	}

	if cfg.TTLMode != "archive" || cfg.TTLBatchSize != 1000 {
		t.Fatalf("unexpected TTL defaults: mode=%s batch=%d", cfg.TTLMode, cfg.TTLBatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("LEDGER_FORBID_SELF_REFERENCE", "true")
	t.Setenv("FX_TTL_RETENTION_DAYS", "7")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected custom HTTP port, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout 45s, got %s", cfg.DatabaseTimeout)
	}

	if !cfg.ForbidSelfReference {
		t.Fatalf("expected self-reference check to be enabled")
	}

	if cfg.TTLRetentionDays != 7 {
		t.Fatalf("expected retention 7 days, got %d", cfg.TTLRetentionDays)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxledger.yaml")
	content := []byte("http_port: \"7070\"\nlog_level: debug\nfx_ttl_mode: delete\nredis_url: \"\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv(config.ConfigFileEnv, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected port from file, got %s", cfg.HTTPPort)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to override file, got %s", cfg.LogLevel)
	}
	if cfg.TTLMode != "delete" {
		t.Fatalf("expected ttl mode from file, got %s", cfg.TTLMode)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected file to disable redis, got %s", cfg.RedisURL)
	}
	if cfg.DatabaseMaxConns != 25 {
		t.Fatalf("expected untouched default, got %d", cfg.DatabaseMaxConns)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(config.ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
