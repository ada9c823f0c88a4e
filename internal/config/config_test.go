package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "upstream:\n  base_url: \"http://cloud.example.com\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Upstream.BaseURL != "http://cloud.example.com" {
		t.Errorf("Explicit value lost: %q", cfg.Upstream.BaseURL)
	}
	if cfg.Gateway.HTTPPort != 8090 {
		t.Errorf("Expected default port 8090, got %d", cfg.Gateway.HTTPPort)
	}
	if cfg.Telemetry.PollInterval != 2*time.Second {
		t.Errorf("Expected default poll interval 2s, got %v", cfg.Telemetry.PollInterval)
	}
	if cfg.Telemetry.AnalogMax != 4095 {
		t.Errorf("Expected default analog_max 4095, got %d", cfg.Telemetry.AnalogMax)
	}
	if cfg.Session.TokenFile == "" {
		t.Error("Expected a default token file path")
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
gateway:
  http_port: 9000
telemetry:
  poll_interval: 500ms
  analog_max: 1050
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.HTTPPort != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Gateway.HTTPPort)
	}
	if cfg.Telemetry.PollInterval != 500*time.Millisecond {
		t.Errorf("Expected poll interval 500ms, got %v", cfg.Telemetry.PollInterval)
	}
	if cfg.Telemetry.AnalogMax != 1050 {
		t.Errorf("Expected rev A scale 1050, got %d", cfg.Telemetry.AnalogMax)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
