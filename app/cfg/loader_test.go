package cfg

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.DBPath != "./data/menhub.db" {
		t.Errorf("Expected default DB path, got '%s'", cfg.DBPath)
	}
	if cfg.WindowDays != 7 {
		t.Errorf("Expected window days 7, got %d", cfg.WindowDays)
	}
	if cfg.MaxResults != 120 {
		t.Errorf("Expected max results 120, got %d", cfg.MaxResults)
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("Expected cache TTL 300, got %d", cfg.CacheTTL)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("Expected no Redis address, got '%s'", cfg.RedisAddr)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := load([]string{
		"--port", "9090",
		"--redis-addr", "localhost:6379",
		"--window-days", "14",
		"--api-key", "rahasia",
		"--timezone", "UTC",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected Redis address, got '%s'", cfg.RedisAddr)
	}
	if cfg.WindowDays != 14 {
		t.Errorf("Expected window days 14, got %d", cfg.WindowDays)
	}
	if cfg.APIAccessKey != "rahasia" {
		t.Errorf("Expected API key 'rahasia', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("MAX_RESULTS", "80")
	t.Setenv("FEEDS_DIR", "/etc/menhub/feeds")

	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.MaxResults != 80 {
		t.Errorf("Expected max results 80, got %d", cfg.MaxResults)
	}
	if cfg.FeedsDir != "/etc/menhub/feeds" {
		t.Errorf("Expected feeds dir from env, got '%s'", cfg.FeedsDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := load([]string{"--worker-count", "0"})
	if err == nil || !strings.Contains(err.Error(), "worker count") {
		t.Errorf("Expected worker count error, got %v", err)
	}

	_, err = load([]string{"--cache-ttl=-1"})
	if err == nil {
		t.Error("Expected cache TTL error")
	}
}
