package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_DRIVER", "DATABASE_PATH", "WEATHER_DEFAULT_CITY", "WEATHER_REFRESH_SCHEDULE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.DatabasePath != "healthlog.db" {
		t.Fatalf("unexpected database config %q %q", cfg.DatabaseDriver, cfg.DatabasePath)
	}
	if cfg.Weather.DefaultCity != "Taipei" || cfg.Weather.RefreshSchedule != "@every 30m" {
		t.Fatalf("unexpected weather defaults %+v", cfg.Weather)
	}
	if cfg.RateLimitRPS != 1 || cfg.RateLimitBurst != 5 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadPostgresFromParts(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "health")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "healthlog")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSLMODE", "")

	cfg := Load()
	want := "host=db user=health password=pw dbname=healthlog port=5432 sslmode=disable"
	if cfg.DatabaseDriver != "postgres" || cfg.DatabasePath != want {
		t.Fatalf("unexpected dsn %q (driver %q)", cfg.DatabasePath, cfg.DatabaseDriver)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "fast")
	t.Setenv("RATE_LIMIT_BURST", "many")

	cfg := Load()
	if cfg.RateLimitRPS != 1 || cfg.RateLimitBurst != 5 {
		t.Fatalf("expected defaults for invalid values, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WEATHER_DEFAULT_CITY=Tokyo\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("WEATHER_DEFAULT_CITY", "")
	os.Unsetenv("WEATHER_DEFAULT_CITY")

	LoadDotEnv(path)
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))

	if got := Load().Weather.DefaultCity; got != "Tokyo" {
		t.Fatalf("expected city from .env, got %q", got)
	}
}
