package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad_Defaults tests that a missing file yields built-in defaults
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load with missing file failed: %v", err)
	}

	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("Expected default server URL %q, got %q", DefaultServerURL, cfg.ServerURL)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected default poll interval %s, got %s", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.PushPath != DefaultPushPath {
		t.Errorf("Expected default push path %q, got %q", DefaultPushPath, cfg.PushPath)
	}
}

// TestLoad_FileOverridesDefaults tests YAML values replacing defaults
func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaydeck.yml")
	content := "server_url: http://hub.lan:5001\npoll_interval: 2s\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://hub.lan:5001" {
		t.Errorf("Expected server URL from file, got %q", cfg.ServerURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("Expected poll interval 2s, got %s", cfg.PollInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.LogLevel)
	}
	// Untouched fields keep defaults
	if cfg.PushPath != DefaultPushPath {
		t.Errorf("Expected default push path, got %q", cfg.PushPath)
	}
}

// TestLoad_EnvOverridesFile tests that environment variables win over the file
func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaydeck.yml")
	if err := os.WriteFile(path, []byte("server_url: http://from-file:5001\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("RELAYDECK_SERVER_URL", "http://from-env:5001")
	t.Setenv("RELAYDECK_POLL_INTERVAL", "7s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://from-env:5001" {
		t.Errorf("Expected env to override file, got %q", cfg.ServerURL)
	}
	if cfg.PollInterval != 7*time.Second {
		t.Errorf("Expected poll interval 7s from env, got %s", cfg.PollInterval)
	}
}

// TestLoad_Validation tests rejection of broken values
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty server URL", "server_url: \"\"\n"},
		{"zero poll interval", "poll_interval: 0s\n"},
		{"relative push path", "push_path: push\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "relaydeck.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
