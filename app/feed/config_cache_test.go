package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFeedConfig(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedConfig(t, tempDir, "antara", `
url: "https://www.antaranews.com/rss/ekonomi.xml"
source: "ANTARA"

settings:
  enabled: true
  refresh_interval: 600
  max_items: 25
  timeout: 15
  extract_content: true

filters:
  - field: "body"
    includes:
      - "perhubungan"
    excludes:
      - "iklan"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 feedConfig, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("antara")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Name != "antara" {
		t.Errorf("Expected name 'antara', got '%s'", feedConfig.Name)
	}
	if feedConfig.Source != "ANTARA" {
		t.Errorf("Expected source 'ANTARA', got '%s'", feedConfig.Source)
	}
	if feedConfig.Settings.RefreshInterval != 600 {
		t.Errorf("Expected refresh interval 600, got %d", feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", feedConfig.Settings.MaxItems)
	}
	if !feedConfig.Settings.ExtractContent {
		t.Error("Expected content extraction enabled")
	}
	if len(feedConfig.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(feedConfig.Filters))
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedConfig(t, tempDir, "dephub", `
url: "https://dephub.go.id/rss"
settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	feedConfig, err := configCache.GetConfig("dephub")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Source != "dephub" {
		t.Errorf("Expected source to default to the feed name, got '%s'", feedConfig.Source)
	}
	if feedConfig.Settings.RefreshInterval != 900 {
		t.Errorf("Expected default refresh interval 900, got %d", feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.MaxItems != 50 {
		t.Errorf("Expected default max items 50, got %d", feedConfig.Settings.MaxItems)
	}
	if feedConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", feedConfig.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "missing url", content: "settings:\n  enabled: true\n", errPart: "feed URL is required"},
		{name: "relative url", content: "url: \"/rss\"\n", errPart: "absolute http(s) URL"},
		{name: "negative timeout", content: "url: \"https://a.id/rss\"\nsettings:\n  timeout: -1\n", errPart: "timeout must be non-negative"},
		{name: "unknown filter field", content: "url: \"https://a.id/rss\"\nfilters:\n  - field: \"authors\"\n    includes: [\"x\"]\n", errPart: "invalid filter field"},
		{name: "empty filter", content: "url: \"https://a.id/rss\"\nfilters:\n  - field: \"title\"\n", errPart: "at least one include or exclude"},
		{name: "broken yaml", content: "url: [", errPart: "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeFeedConfig(t, tempDir, "broken", tt.content)

			err := NewConfigCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected error for invalid feedConfig")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing %q, got %v", tt.errPart, err)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheEnabledConfigsAndSources(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedConfig(t, tempDir, "antara", "url: \"https://a.id/rss\"\nsource: \"ANTARA\"\nsettings:\n  enabled: true\n")
	writeFeedConfig(t, tempDir, "detik", "url: \"https://d.id/rss\"\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled["antara"] == nil {
		t.Errorf("Expected only antara enabled, got %v", enabled)
	}

	sources := configCache.Sources()
	if sources["antara"] != "ANTARA" || sources["detik"] != "detik" {
		t.Errorf("Unexpected sources %v", sources)
	}

	if _, err := configCache.GetConfig("kompas"); err == nil {
		t.Error("Expected error for unknown feed")
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedConfig(t, tempDir, "antara", "url: \"https://a.id/rss\"\nsettings:\n  max_items: 10\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	writeFeedConfig(t, tempDir, "antara", "url: \"https://a.id/rss\"\nsettings:\n  max_items: 20\n")
	feedConfig, err := configCache.LoadConfig("antara")
	if err != nil {
		t.Fatal(err)
	}
	if feedConfig.Settings.MaxItems != 20 {
		t.Errorf("Expected reloaded max items 20, got %d", feedConfig.Settings.MaxItems)
	}

	cached, _ := configCache.GetConfig("antara")
	if cached.Settings.MaxItems != 20 {
		t.Errorf("Expected cache to hold reloaded config, got %d", cached.Settings.MaxItems)
	}
}
