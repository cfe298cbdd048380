package config

import (
	"context"
	"strings"
	"testing"
	"time"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("REFRESH_TOKEN_SECRET", "abcdefghijklmnopqrstuvwxyz654321")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppEnv != "development" || cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("access TTL default %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("refresh TTL default %s", cfg.RefreshTokenTTL)
	}
	if cfg.IsProduction() {
		t.Fatal("development must not report production")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://vidora.example ,")
	t.Setenv("API_RATE_LIMIT_RPM", "120")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessTokenTTL != 5*time.Minute || cfg.RefreshTokenTTL != 48*time.Hour {
		t.Fatalf("ttl overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://vidora.example" {
		t.Fatalf("cors origins parsed wrong: %v", cfg.CORSOrigins)
	}
	if cfg.APIRateLimitRPM != 120 {
		t.Fatalf("rate limit override not applied: %d", cfg.APIRateLimitRPM)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	setValidEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "fifteen minutes")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := &Config{AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "ACCESS_TOKEN_SECRET") || !strings.Contains(err.Error(), "REFRESH_TOKEN_SECRET") {
		t.Fatalf("expected both secrets reported, got %v", err)
	}
}

func TestValidateRequiresDistinctSigningKeys(t *testing.T) {
	cfg := &Config{
		AccessTokenSecret:  "same-key",
		RefreshTokenSecret: "same-key",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected key separation failure, got %v", err)
	}
}

func TestValidateRefreshTTLMustExceedAccessTTL(t *testing.T) {
	cfg := &Config{
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "b",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    time.Minute,
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "refresh TTL") {
		t.Fatalf("expected TTL ordering failure, got %v", err)
	}
}

func TestValidateProductionNeedsDatabase(t *testing.T) {
	cfg := &Config{
		AppEnv:             "production",
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "b",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected production database requirement, got %v", err)
	}
}
