package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/scheduler_test")
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("expected default request timeout 30, got %d", cfg.RequestTimeout)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PORT", "9999")
	os.Setenv("ENV", "production")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestValidateRequiresIssuerOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production", RequestTimeout: 30}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without AUTH_ISSUER")
	}

	cfg.AuthIssuer = "https://auth.example.com/realms/scheduler"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDevWithoutIssuer(t *testing.T) {
	cfg := &Config{Env: "development", RequestTimeout: 30}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsZeroTimeout(t *testing.T) {
	cfg := &Config{Env: "development", RequestTimeout: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero request timeout")
	}
}
