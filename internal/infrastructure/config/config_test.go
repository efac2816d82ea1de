package config_test

import (
	"testing"
	"time"

	"github.com/mpavlik/tillbook/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Error("expected default database URL")
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected default idempotency TTL 24h, got %s", cfg.IdempotencyTTL)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("DATABASE_MAX_CONNS", "50")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.HTTPPort)
	}

	if cfg.LogFormat != "console" {
		t.Errorf("expected console log format, got %s", cfg.LogFormat)
	}

	if cfg.DatabaseMaxConns != 50 {
		t.Errorf("expected 50 max conns, got %d", cfg.DatabaseMaxConns)
	}
}
