package config

import (
	"testing"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/records"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/safety")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("RECORD_VISIBILITY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "4000" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.HTTPAddress() != ":4000" {
		t.Fatalf("unexpected address: %s", cfg.HTTPAddress())
	}
	if cfg.JWTIssuer != "safety-app" {
		t.Fatalf("unexpected issuer: %s", cfg.JWTIssuer)
	}
	if cfg.JWTTTL != 12*time.Hour {
		t.Fatalf("unexpected ttl: %v", cfg.JWTTTL)
	}
	if cfg.Visibility != records.VisibilityOwner {
		t.Fatalf("visibility must default to owner-only, got %v", cfg.Visibility)
	}
	if cfg.MaxBodyBytes != 20<<20 {
		t.Fatalf("unexpected body cap: %d", cfg.MaxBodyBytes)
	}
}

func TestLoadRequiredVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/safety")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadVisibilityAll(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/safety")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RECORD_VISIBILITY", "all")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Visibility != records.VisibilityAll {
		t.Fatalf("unexpected visibility: %v", cfg.Visibility)
	}
}

func TestLoadRejectsUnknownVisibility(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/safety")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RECORD_VISIBILITY", "everyone")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown visibility")
	}
}

func TestParseCSV(t *testing.T) {
	got := parseCSV("http://a.local, http://b.local ,")
	if len(got) != 2 || got[0] != "http://a.local" || got[1] != "http://b.local" {
		t.Fatalf("unexpected origins: %v", got)
	}
}
