package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PHONE_COUNTRY_CODE", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.PhoneCountryCode != "+91" {
		t.Fatalf("unexpected country code %q", cfg.PhoneCountryCode)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("SESSION_TTL_HOURS", "bogus")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("STORAGE_DRIVER", "MEMORY")

	cfg := FromEnv()
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("invalid ttl should fall back to default, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("expected lower-cased driver, got %q", cfg.StorageDriver)
	}
}

func TestValidate_SessionSecret(t *testing.T) {
	cfg := Config{SessionSecret: DefaultSessionSecret, SiteURL: "https://chaeenmatcha.example.com"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected default secret to be rejected on an https site")
	}

	cfg.SiteURL = "http://localhost:8080"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default secret should be allowed for plain http, got %v", err)
	}

	cfg.SiteURL = "https://chaeenmatcha.example.com"
	cfg.SessionSecret = "a-real-secret-from-the-environment"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
