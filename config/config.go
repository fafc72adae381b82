package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SupportedFormats is the closed set of export formats.
var SupportedFormats = map[string]struct{}{
	"json":  {},
	"jsonl": {},
	"csv":   {},
	"html":  {},
	"xml":   {},
	"excel": {},
}

// Config holds scraper configuration.
type Config struct {
	BaseURL         string
	Keywords        []string
	MaxProfiles     int
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	CacheSize       int
	UserAgent       string
	Proxy           string
	OutputFile      string
	OutputFormat    string // json, jsonl, csv, html, xml, or excel
	MetricsAddr     string
	Verbose         bool
}

// DefaultConfig returns conservative defaults for the public search endpoint.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://search.snapchat.com/search",
		MaxProfiles:     100,
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    200 * time.Millisecond,
		RetryBackoffMax: 2 * time.Second,
		CacheSize:       128,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		OutputFile:      "output/profiles.json",
		OutputFormat:    "json",
		Verbose:         false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Proxy != "" {
		proxyURL, err := url.Parse(c.Proxy)
		if err != nil || proxyURL.Host == "" {
			return fmt.Errorf("invalid proxy URL %q", c.Proxy)
		}
	}

	if c.MaxProfiles <= 0 {
		return fmt.Errorf("max profiles must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if _, ok := SupportedFormats[c.OutputFormat]; !ok {
		return fmt.Errorf("output format must be one of json, jsonl, csv, html, xml, excel")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// fileConfig mirrors Config for YAML decoding. Durations are expressed in
// milliseconds (timeout in seconds) since yaml.v3 has no duration type.
type fileConfig struct {
	BaseURL         string   `yaml:"base_url"`
	Keywords        []string `yaml:"keywords"`
	MaxProfiles     int      `yaml:"max_profiles"`
	TimeoutSec      int      `yaml:"timeout_sec"`
	MaxRetries      int      `yaml:"max_retries"`
	RetryBackoffMs  int      `yaml:"retry_backoff_ms"`
	RetryBackoffMax int      `yaml:"retry_backoff_max_ms"`
	CacheSize       int      `yaml:"cache_size"`
	UserAgent       string   `yaml:"user_agent"`
	Proxy           string   `yaml:"proxy"`
	OutputFile      string   `yaml:"output_file"`
	OutputFormat    string   `yaml:"output_format"`
	MetricsAddr     string   `yaml:"metrics_addr"`
	Verbose         bool     `yaml:"verbose"`
}

// LoadFile overlays values from a YAML file onto the config. Zero-value
// fields in the file leave the existing values untouched.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overlay fileConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if len(overlay.Keywords) > 0 {
		c.Keywords = overlay.Keywords
	}
	if overlay.MaxProfiles != 0 {
		c.MaxProfiles = overlay.MaxProfiles
	}
	if overlay.TimeoutSec != 0 {
		c.Timeout = time.Duration(overlay.TimeoutSec) * time.Second
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.RetryBackoffMs != 0 {
		c.RetryBackoff = time.Duration(overlay.RetryBackoffMs) * time.Millisecond
	}
	if overlay.RetryBackoffMax != 0 {
		c.RetryBackoffMax = time.Duration(overlay.RetryBackoffMax) * time.Millisecond
	}
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	if overlay.Proxy != "" {
		c.Proxy = overlay.Proxy
	}
	if overlay.OutputFile != "" {
		c.OutputFile = overlay.OutputFile
	}
	if overlay.OutputFormat != "" {
		c.OutputFormat = overlay.OutputFormat
	}
	if overlay.MetricsAddr != "" {
		c.MetricsAddr = overlay.MetricsAddr
	}
	if overlay.Verbose {
		c.Verbose = true
	}

	return nil
}

// EnvString reads a string environment variable, reporting presence.
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable, reporting presence.
func EnvInt(name string) (int, bool, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return parsed, true, nil
}
