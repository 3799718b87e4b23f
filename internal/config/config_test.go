package config

import (
	"testing"
	"time"
)

type mapEnv map[string]string

func (m mapEnv) Getenv(key string) string { return m[key] }

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapEnv{"SECRET": "x"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("expected default gin mode release, got %q", cfg.GinMode)
	}
	if cfg.TokenExpiry != 3000*time.Second {
		t.Fatalf("expected 3000s expiry, got %s", cfg.TokenExpiry)
	}
	if cfg.SecretFallback {
		t.Fatalf("expected configured secret")
	}
}

func TestLoadConfigFromEnv_MissingSecretFallsBack(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapEnv{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Secret != DefaultSecret || !cfg.SecretFallback {
		t.Fatalf("expected fallback secret, got %q (fallback=%v)", cfg.Secret, cfg.SecretFallback)
	}
}

func TestLoadConfigFromEnv_PortOverride(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapEnv{"SECRET": "x", "PORT": "1234"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 1234 {
		t.Fatalf("expected port 1234, got %d", cfg.Port)
	}
}

func TestLoadConfigFromEnv_InvalidValues(t *testing.T) {
	for _, env := range []mapEnv{
		{"PORT": "0"},
		{"TOKEN_EXPIRY_SECONDS": "-1"},
		{"LOGIN_RATE_LIMIT": "many"},
		{"SEED_USERS": "nobody"},
	} {
		if _, err := LoadConfigFromEnv(env); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}

func TestLoadConfigFromEnv_SeedUsers(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapEnv{"SEED_USERS": "a@x.io:pw1, b@x.io:pw2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cfg.SeedUsers) != 2 {
		t.Fatalf("expected 2 seed users, got %d", len(cfg.SeedUsers))
	}
	if cfg.SeedUsers[1].Email != "b@x.io" || cfg.SeedUsers[1].Password != "pw2" {
		t.Fatalf("unexpected seed user: %+v", cfg.SeedUsers[1])
	}
}
