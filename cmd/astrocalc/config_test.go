package main

import (
	"testing"
	"time"
)

func TestGetenvDurationDefault_AcceptsGoSyntaxAndSeconds(t *testing.T) {
	t.Setenv("D_GO", "1500ms")
	t.Setenv("D_SECS", "0.6")
	t.Setenv("D_BAD", "soon")

	if got := getenvDurationDefault("D_GO", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %s", got)
	}
	if got := getenvDurationDefault("D_SECS", time.Second); got != 600*time.Millisecond {
		t.Fatalf("expected 600ms, got %s", got)
	}
	if got := getenvDurationDefault("D_BAD", time.Second); got != time.Second {
		t.Fatalf("expected default, got %s", got)
	}
	if got := getenvDurationDefault("D_UNSET", 3*time.Second); got != 3*time.Second {
		t.Fatalf("expected default, got %s", got)
	}
}

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if cfg.admissionSlots != 6 || cfg.admissionTimeout != 2*time.Second {
		t.Fatalf("unexpected admission defaults: %d %s", cfg.admissionSlots, cfg.admissionTimeout)
	}
	if cfg.geoTTL != 24*time.Hour || cfg.tzTTL != 21*24*time.Hour || cfg.resultTTL != 6*time.Hour {
		t.Fatalf("unexpected TTL defaults: %s %s %s", cfg.geoTTL, cfg.tzTTL, cfg.resultTTL)
	}
	if cfg.retry.MaxAttempts != 3 || cfg.retry.BaseSleep != 600*time.Millisecond {
		t.Fatalf("unexpected retry defaults: %+v", cfg.retry)
	}
	if cfg.redisNeeded() {
		t.Fatalf("redis must be off by default")
	}
}

func TestReadConfig_GeoTTLSecondsFallback(t *testing.T) {
	t.Setenv("GEO_TTL_SECONDS", "3600")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if cfg.geoTTL != time.Hour {
		t.Fatalf("expected 1h, got %s", cfg.geoTTL)
	}
}

func TestReadConfig_LowRPSDefaultsBurstToOne(t *testing.T) {
	t.Setenv("RATE_RPS", "0.5")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if cfg.rateBurst != 1 {
		t.Fatalf("expected burst 1, got %d", cfg.rateBurst)
	}
}

func TestReadConfig_RedisRequiresAddr(t *testing.T) {
	t.Setenv("RESULT_REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "")

	if _, err := readConfig(); err == nil {
		t.Fatalf("expected error without REDIS_ADDR")
	}
}

func TestReadConfig_PortFallback(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("PORT", "10000")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if cfg.listenAddr != ":10000" {
		t.Fatalf("expected :10000, got %q", cfg.listenAddr)
	}
}
