package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("unexpected default NATS URL %q", cfg.NATS.URL)
	}
	if cfg.Realtime.SendBuffer != 64 {
		t.Errorf("expected default send buffer 64, got %d", cfg.Realtime.SendBuffer)
	}
	if cfg.Auth.Enabled {
		t.Error("expected auth disabled by default")
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comandero.yaml")
	yaml := `
server:
  port: "9090"
auth:
  enabled: false
realtime:
  send_buffer: 128
  relay_enabled: false
cache:
  menu_ttl: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Realtime.SendBuffer != 128 {
		t.Errorf("expected send buffer 128, got %d", cfg.Realtime.SendBuffer)
	}
	if cfg.Realtime.RelayEnabled {
		t.Error("expected relay disabled")
	}
	if cfg.Cache.MenuTTL != 30*time.Second {
		t.Errorf("expected menu TTL 30s, got %v", cfg.Cache.MenuTTL)
	}
	// Untouched sections keep defaults.
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("expected default max conns 15, got %d", cfg.Postgres.MaxConns)
	}
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("COMANDERO_PORT", "7070")
	t.Setenv("COMANDERO_AUTH_ENABLED", "false")
	t.Setenv("NATS_URL", "nats://queue:4222")
	t.Setenv("COMANDERO_RT_SEND_BUFFER", "256")
	t.Setenv("COMANDERO_RATE_RPS", "50.5")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %q", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://queue:4222" {
		t.Errorf("unexpected NATS URL %q", cfg.NATS.URL)
	}
	if cfg.Realtime.SendBuffer != 256 {
		t.Errorf("expected send buffer 256, got %d", cfg.Realtime.SendBuffer)
	}
	if cfg.Rate.RequestsPerSecond != 50.5 {
		t.Errorf("expected 50.5 rps, got %v", cfg.Rate.RequestsPerSecond)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Enabled = false
	cfg.Server.Port = "not-a-port"
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = ""
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}

	cfg.Auth.JWTSecret = "test-secret"
	if err := validate(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSendBuffer(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Enabled = false
	cfg.Realtime.SendBuffer = 0
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for zero send buffer")
	}
}
