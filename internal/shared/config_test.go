package shared_test

import (
	"testing"
	"time"

	"staylist/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := shared.Load()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr: %s", cfg.HTTPAddr)
	}
	if cfg.CacheTTL != 900*time.Second {
		t.Fatalf("CacheTTL: %v", cfg.CacheTTL)
	}
	if cfg.WriteRPS != 20 {
		t.Fatalf("WriteRPS: %d", cfg.WriteRPS)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("IMPORT_WORKERS", "3")

	cfg := shared.Load()
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr: %s", cfg.HTTPAddr)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("CacheTTL: %v", cfg.CacheTTL)
	}
	if cfg.Workers != 3 {
		t.Fatalf("Workers: %d", cfg.Workers)
	}
}
