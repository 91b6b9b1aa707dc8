package config

import (
	"testing"
	"time"
)

func TestLoadAppDefaults(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "id")
	t.Setenv("ADZUNA_APP_KEY", "key")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("PASSWORD_RESET_TTL", "")
	t.Setenv("ADZUNA_COUNTRY", "")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != DefaultPort || cfg.AdzunaCountry != "gb" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.JWTTTL != 24*time.Hour || cfg.PasswordResetTTL != time.Hour {
		t.Fatalf("ttls = %v %v", cfg.JWTTTL, cfg.PasswordResetTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadAppRequiresCredentials(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "")
	t.Setenv("ADZUNA_APP_KEY", "key")
	t.Setenv("JWT_SECRET", "s")
	if _, err := LoadApp(); err == nil {
		t.Fatal("expected error without ADZUNA_APP_ID")
	}
}

func TestLoadAppBadDuration(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "id")
	t.Setenv("ADZUNA_APP_KEY", "key")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_TTL", "forever")
	if _, err := LoadApp(); err == nil {
		t.Fatal("expected error for bad JWT_TTL")
	}
}
