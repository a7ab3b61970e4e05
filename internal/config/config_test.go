package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PURCHASE_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")

	cfg := Load()

	if cfg.PurchaseMaxAttempts != 5 {
		t.Fatalf("expected fallback attempts 5, got %d", cfg.PurchaseMaxAttempts)
	}
	if cfg.CatalogCacheTTL != 90*time.Second {
		t.Fatalf("expected ttl 90s, got %s", cfg.CatalogCacheTTL)
	}
	if cfg.DBMaxOpenConns != 20 || cfg.DBMaxIdleConns != 10 || cfg.RedisPoolSize != 10 {
		t.Fatalf("unexpected pool sizes: db %d/%d redis %d", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.RedisPoolSize)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{Env: "production"}
	if cfg.IsDevelopment() || !cfg.IsProduction() {
		t.Fatal("expected production config")
	}
}
