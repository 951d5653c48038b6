package config

import (
	"strings"
	"testing"
	"time"

	"github.com/shakibbs/Event-Backend/internal/infra/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("EMS_JWT_SECRET", testSecret)
	t.Setenv("EMS_JWT_ACCESS_TOKEN_TTL_MS", "60000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.JWT.AccessTokenTTL() != time.Minute {
		t.Fatalf("expected access ttl 1m, got %v", cfg.JWT.AccessTokenTTL())
	}
	if cfg.JWT.RefreshTokenTTL() != 7*24*time.Hour {
		t.Fatalf("expected default refresh ttl 168h, got %v", cfg.JWT.RefreshTokenTTL())
	}
	if cfg.Bcrypt.Cost != 12 {
		t.Fatalf("expected default bcrypt cost 12, got %d", cfg.Bcrypt.Cost)
	}
	if cfg.Registry.Backend != "memory" {
		t.Fatalf("expected memory registry backend, got %s", cfg.Registry.Backend)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("EMS_JWT_SECRET", strings.Repeat("x", security.MinSecretLength-1))

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for short secret")
	}
	if !strings.Contains(err.Error(), "jwt.secret") {
		t.Fatalf("expected jwt.secret error, got %v", err)
	}
}

func TestValidateRejectsUnknownRegistryBackend(t *testing.T) {
	cfg := &AppConfig{
		JWT: JWTSettings{
			Secret:            testSecret,
			AccessTokenTTLMs:  1000,
			RefreshTokenTTLMs: 2000,
		},
		Storage:  StorageSettings{Backend: "memory"},
		Registry: RegistrySettings{Backend: "memcached"},
	}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "registry.backend") {
		t.Fatalf("expected registry backend error, got %v", err)
	}
}

func TestValidateRejectsUnknownStorageBackend(t *testing.T) {
	cfg := &AppConfig{
		JWT: JWTSettings{
			Secret:            testSecret,
			AccessTokenTTLMs:  1000,
			RefreshTokenTTLMs: 2000,
		},
		Storage:  StorageSettings{Backend: "sqlite"},
		Registry: RegistrySettings{Backend: "memory"},
	}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("expected storage backend error, got %v", err)
	}
}

func TestValidateRejectsNonPositiveTTL(t *testing.T) {
	cfg := &AppConfig{
		JWT: JWTSettings{
			Secret:            testSecret,
			AccessTokenTTLMs:  0,
			RefreshTokenTTLMs: 2000,
		},
		Storage:  StorageSettings{Backend: "memory"},
		Registry: RegistrySettings{Backend: "memory"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero access ttl")
	}
}
