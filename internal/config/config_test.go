package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
  corsOrigins: ["https://app.example.com"]
redis:
  addr: localhost:6379
  ttl: 5m
tests:
  ttl: 30s
activity:
  stream: course-activity
  timeout: 2s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Activity.Stream != "course-activity" {
		t.Fatalf("unexpected activity config: %+v", cfg.Activity)
	}
	if got := TTLDuration(cfg.Tests.TTL, time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %s", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("invalid: got %s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
