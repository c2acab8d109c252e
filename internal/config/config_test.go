package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_LIMIT", "")
	t.Setenv("DEFAULT_WINDOW", "")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DB_DIALECT", "")
	t.Setenv("BCRYPT_ROUNDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Limits.DefaultLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", cfg.Limits.DefaultLimit)
	}
	if cfg.Limits.DefaultWindow != 60*time.Second {
		t.Fatalf("expected default window 60s, got %v", cfg.Limits.DefaultWindow)
	}
	if cfg.Server.Port != "3000" {
		t.Fatalf("expected port 3000, got %s", cfg.Server.Port)
	}
	if cfg.Database.Dialect != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %s", cfg.Database.Dialect)
	}
	if cfg.Security.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Security.BcryptCost)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_LIMIT", "25")
	t.Setenv("DEFAULT_WINDOW", "120")
	t.Setenv("REDIS_URL", "redis://redis.internal:6380/2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Limits.DefaultLimit != 25 {
		t.Fatalf("expected limit 25, got %d", cfg.Limits.DefaultLimit)
	}
	if cfg.Limits.DefaultWindow != 2*time.Minute {
		t.Fatalf("expected window 2m, got %v", cfg.Limits.DefaultWindow)
	}
	if cfg.Redis.URL != "redis://redis.internal:6380/2" {
		t.Fatalf("unexpected redis url %s", cfg.Redis.URL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"DEFAULT_LIMIT":  "zero",
		"DEFAULT_WINDOW": "-5",
	}

	for key, value := range cases {
		t.Setenv("DEFAULT_LIMIT", "10")
		t.Setenv("DEFAULT_WINDOW", "60")
		t.Setenv(key, value)

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for %s=%s", key, value)
		}
	}
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		Name:     "gatekeeper",
		User:     "gk",
		Password: "s3cret",
	}

	want := "host=db.internal port=5433 user=gk password=s3cret dbname=gatekeeper sslmode=disable"
	if got := db.PostgresDSN(); got != want {
		t.Fatalf("dsn mismatch:\n got %s\nwant %s", got, want)
	}
}
