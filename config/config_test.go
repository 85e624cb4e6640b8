package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SNAPSHOT_BACKEND", "")
	t.Setenv("INVENTORY_URL", "")

	cfg, err := LoadConfig(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotBackend != BackendMemory {
		t.Fatalf("backend = %q", cfg.SnapshotBackend)
	}
	if cfg.InventoryTimeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.InventoryTimeout)
	}
	if cfg.Locale != "pt-BR" || cfg.NotifyOutOfStockOnAdd || cfg.StrictSnapshot {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("INVENTORY_TIMEOUT", "750ms")
	t.Setenv("NOTIFY_OUT_OF_STOCK_ON_ADD", "true")
	t.Setenv("CART_LOCALE", "en")

	cfg, err := LoadConfig(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotBackend != BackendRedis || cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis settings %+v", cfg)
	}
	if cfg.InventoryTimeout != 750*time.Millisecond || !cfg.NotifyOutOfStockOnAdd || cfg.Locale != "en" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("SNAPSHOT_BACKEND", "sqlite")
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("STRICT_SNAPSHOT", "maybe")

	_, err := LoadConfig(zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"SNAPSHOT_BACKEND", "REDIS_DB", "STRICT_SNAPSHOT"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}
