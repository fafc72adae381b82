package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty base URL", func(c *Config) { c.BaseURL = "" }, true},
		{"base URL without host", func(c *Config) { c.BaseURL = "/search" }, true},
		{"invalid proxy", func(c *Config) { c.Proxy = "not a url" }, true},
		{"valid proxy", func(c *Config) { c.Proxy = "http://127.0.0.1:8080" }, false},
		{"zero max profiles", func(c *Config) { c.MaxProfiles = 0 }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"negative max retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"backoff above cap", func(c *Config) { c.RetryBackoff = 5 * time.Second }, true},
		{"zero cache size", func(c *Config) { c.CacheSize = 0 }, true},
		{"empty output file", func(c *Config) { c.OutputFile = "" }, true},
		{"unsupported format", func(c *Config) { c.OutputFormat = "yaml" }, true},
		{"excel format", func(c *Config) { c.OutputFormat = "excel" }, false},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `base_url: https://example.test/search
keywords:
  - pizza
  - coffee
max_profiles: 25
timeout_sec: 30
retry_backoff_ms: 500
retry_backoff_max_ms: 4000
output_format: csv
metrics_addr: ":9090"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.BaseURL != "https://example.test/search" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if len(cfg.Keywords) != 2 || cfg.Keywords[0] != "pizza" {
		t.Errorf("Keywords = %v", cfg.Keywords)
	}
	if cfg.MaxProfiles != 25 {
		t.Errorf("MaxProfiles = %d", cfg.MaxProfiles)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Errorf("RetryBackoff = %v", cfg.RetryBackoff)
	}
	if cfg.RetryBackoffMax != 4*time.Second {
		t.Errorf("RetryBackoffMax = %v", cfg.RetryBackoffMax)
	}
	if cfg.OutputFormat != "csv" {
		t.Errorf("OutputFormat = %q", cfg.OutputFormat)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}

	// Fields absent from the file keep their defaults.
	if cfg.OutputFile != DefaultConfig().OutputFile {
		t.Errorf("OutputFile = %q, want default", cfg.OutputFile)
	}
	if cfg.MaxRetries != DefaultConfig().MaxRetries {
		t.Errorf("MaxRetries = %d, want default", cfg.MaxRetries)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("keywords: [unterminated"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	if err := cfg.LoadFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestEnvString(t *testing.T) {
	t.Setenv("SNAPSEARCH_TEST_STR", "hello")
	if value, ok := EnvString("SNAPSEARCH_TEST_STR"); !ok || value != "hello" {
		t.Errorf("EnvString() = %q, %v", value, ok)
	}
	if _, ok := EnvString("SNAPSEARCH_TEST_STR_MISSING"); ok {
		t.Error("expected absent variable to report false")
	}
	t.Setenv("SNAPSEARCH_TEST_EMPTY", "")
	if _, ok := EnvString("SNAPSEARCH_TEST_EMPTY"); ok {
		t.Error("expected empty variable to report false")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SNAPSEARCH_TEST_INT", "42")
	value, ok, err := EnvInt("SNAPSEARCH_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Errorf("EnvInt() = %d, %v, %v", value, ok, err)
	}

	t.Setenv("SNAPSEARCH_TEST_INT", "forty-two")
	if _, _, err := EnvInt("SNAPSEARCH_TEST_INT"); err == nil {
		t.Error("expected error for non-integer value")
	}

	if _, ok, err := EnvInt("SNAPSEARCH_TEST_INT_MISSING"); ok || err != nil {
		t.Errorf("expected absent variable to report false, got ok=%v err=%v", ok, err)
	}
}
