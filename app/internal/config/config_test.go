package config

import (
	"testing"
	"time"
)

// --------------- ParseServices ---------------

func TestParseServices_Empty(t *testing.T) {
	services, err := ParseServices("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 0 {
		t.Errorf("expected no services, got %d", len(services))
	}
}

func TestParseServices_Single(t *testing.T) {
	services, err := ParseServices("api=http://localhost:3000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 1 {
		t.Fatalf("expected 1 service, got %d", len(services))
	}
	s := services[0]
	if s.Name != "api" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.HealthPath != "/health" {
		t.Errorf("HealthPath = %q, want /health", s.HealthPath)
	}
}

func TestParseServices_Multiple(t *testing.T) {
	services, err := ParseServices("api=http://a:1, worker=http://b:2 ,db-admin=http://c:3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 3 {
		t.Fatalf("expected 3 services, got %d", len(services))
	}
	if services[1].Name != "worker" {
		t.Errorf("second service = %q", services[1].Name)
	}
}

func TestParseServices_HealthPathOverride(t *testing.T) {
	t.Setenv("DB_ADMIN_HEALTH_PATH", "/api/v1/status")
	services, err := ParseServices("db-admin=http://c:3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services[0].HealthPath != "/api/v1/status" {
		t.Errorf("HealthPath = %q", services[0].HealthPath)
	}
}

func TestParseServices_HealthPathMissingSlash(t *testing.T) {
	t.Setenv("API_HEALTH_PATH", "status")
	services, err := ParseServices("api=http://a:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services[0].HealthPath != "/status" {
		t.Errorf("HealthPath = %q, want /status", services[0].HealthPath)
	}
}

func TestParseServices_Malformed(t *testing.T) {
	for _, raw := range []string{"api", "=http://a:1", "api=", "api=http://a:1,bare"} {
		if _, err := ParseServices(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestParseServices_Duplicate(t *testing.T) {
	if _, err := ParseServices("api=http://a:1,api=http://b:2"); err == nil {
		t.Error("expected duplicate name error")
	}
}

// --------------- Load ---------------

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "4555" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StoreBackend != "sqlite" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.CheckTimeout != 5000*time.Millisecond {
		t.Errorf("CheckTimeout = %v", cfg.CheckTimeout)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d", cfg.RetentionDays)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("POLL_SECONDS", "5")
	t.Setenv("CHECK_TIMEOUT_MS", "250")
	t.Setenv("RETENTION_DAYS", "7")
	t.Setenv("ENABLE_POLLER", "false")
	t.Setenv("SERVICES", "api=http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want lowercased", cfg.StoreBackend)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.CheckTimeout != 250*time.Millisecond {
		t.Errorf("CheckTimeout = %v", cfg.CheckTimeout)
	}
	if cfg.EnablePoller {
		t.Error("EnablePoller should be false")
	}
	if len(cfg.Services) != 1 {
		t.Fatalf("expected 1 service, got %d", len(cfg.Services))
	}
}

func TestLoad_RetentionFloor(t *testing.T) {
	t.Setenv("RETENTION_DAYS", "0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RetentionDays != 1 {
		t.Errorf("RetentionDays = %d, want floor of 1", cfg.RetentionDays)
	}
}
