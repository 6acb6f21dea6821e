package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("Expected default data dir, got %s", cfg.DataDir)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.RefreshInterval != 24*time.Hour || cfg.FreshnessWindow != 24*time.Hour {
		t.Errorf("Expected 24h refresh and freshness, got %s / %s", cfg.RefreshInterval, cfg.FreshnessWindow)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected 30s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.FetchWorkers != 4 {
		t.Errorf("Expected 4 fetch workers, got %d", cfg.FetchWorkers)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATA_DIR", "/var/lib/bdpm")
	t.Setenv("BDPM_BASE_URL", "http://mirror.internal/bdpm")
	t.Setenv("REFRESH_INTERVAL", "6h")
	t.Setenv("FETCH_TIMEOUT", "45s")
	t.Setenv("FETCH_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" || cfg.Env != "prod" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected server settings: %+v", cfg)
	}
	if cfg.DataDir != "/var/lib/bdpm" || cfg.BaseURL != "http://mirror.internal/bdpm" {
		t.Errorf("unexpected source settings: %+v", cfg)
	}
	if cfg.RefreshInterval != 6*time.Hour || cfg.FetchTimeout != 45*time.Second || cfg.FetchWorkers != 8 {
		t.Errorf("unexpected ingestion settings: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"PORT", "80", "invalid PORT"},
		{"PORT", "abc", "invalid PORT"},
		{"ADDRESS", "8.8.8.8", "invalid ADDRESS"},
		{"ADDRESS", "not-an-ip", "invalid ADDRESS"},
		{"ENV", "production", "invalid ENV"},
		{"LOG_LEVEL", "verbose", "invalid LOG_LEVEL"},
		{"MAX_REQUEST_BODY", "-1", "invalid MAX_REQUEST_BODY"},
		{"LOG_RETENTION_WEEKS", "60", "invalid LOG_RETENTION_WEEKS"},
		{"MAX_LOG_FILE_SIZE", "1024", "invalid MAX_LOG_FILE_SIZE"},
		{"BDPM_BASE_URL", "ftp://example.com", "invalid BDPM_BASE_URL"},
		{"BDPM_BASE_URL", "https://", "invalid BDPM_BASE_URL"},
		{"REFRESH_INTERVAL", "10s", "invalid REFRESH_INTERVAL"},
		{"FRESHNESS_WINDOW", "-1h", "invalid FRESHNESS_WINDOW"},
		{"FETCH_TIMEOUT", "1h", "invalid FETCH_TIMEOUT"},
		{"FETCH_WORKERS", "0", "invalid FETCH_WORKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestMalformedNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_WORKERS", "many")
	t.Setenv("REFRESH_INTERVAL", "daily")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.FetchWorkers != 4 || cfg.RefreshInterval != 24*time.Hour {
		t.Errorf("Expected defaults, got %d / %s", cfg.FetchWorkers, cfg.RefreshInterval)
	}
}
