// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8470 {
		t.Errorf("Server.Port = %d, want 8470", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.RateLimitWindow != time.Minute {
		t.Errorf("Server.RateLimitWindow = %v, want 1m", cfg.Server.RateLimitWindow)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Store.Breaker.FailureThreshold != 5 {
		t.Errorf("Store.Breaker.FailureThreshold = %d, want 5", cfg.Store.Breaker.FailureThreshold)
	}
	if !cfg.Events.Enabled || cfg.Events.AlertThreshold != 70 {
		t.Errorf("Events = %+v, want enabled with threshold 70", cfg.Events)
	}
	if cfg.Policy.Risk.ProxyPoints != 30 || cfg.Policy.Risk.HostingPoints != 35 {
		t.Errorf("Policy.Risk points = %d/%d, want 30/35", cfg.Policy.Risk.ProxyPoints, cfg.Policy.Risk.HostingPoints)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"CORS_ORIGINS", "server.cors_origins"},
		{"RATE_LIMIT_REQS", "server.rate_limit_reqs"},
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},
		{"STORE_BACKEND", "store.backend"},
		{"STORE_MAINTENANCE_INTERVAL", "store.maintenance_interval"},
		{"BADGER_PATH", "store.badger_path"},
		{"REDIS_ADDR", "store.redis_addr"},
		{"REDIS_DB", "store.redis_db"},
		{"GEOIP_CITY_DB", "geoip.city_db"},
		{"GEOIP_ANONYMOUS_IP_DB", "geoip.anonymous_ip_db"},
		{"REPUTATION_DATACENTER_CIDRS", "reputation.datacenter_cidrs"},
		{"REPUTATION_CACHE_TTL", "reputation.cache_ttl"},
		{"EVENTS_ALERT_THRESHOLD", "events.alert_threshold"},
		{"POLICY_TIMING_CHECK", "policy.behavior.timing_check"},
		{"POLICY_PROXY_POINTS", "policy.risk.proxy_points"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		t.Setenv(ConfigPathEnvVar, customPath)
		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfLayers checks that env overrides the file and the file
// overrides the defaults.
func TestLoadWithKoanfLayers(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	yamlContent := `
server:
  port: 9000
  read_timeout: 5s
store:
  backend: badger
  badger_path: /tmp/geoscope-test
reputation:
  datacenter_cidrs:
    - 198.51.100.0/24
policy:
  risk:
    proxy_points: 50
`
	configPath := filepath.Join(tmpDir, "geoscope.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REPUTATION_HOSTING_KEYWORDS", "ovh, hetzner ,")
	t.Setenv("POLICY_TIMING_CHECK", policy.TimingCheckCadence)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100 (env wins)", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Store.Backend != StoreBackendBadger || cfg.Store.BadgerPath != "/tmp/geoscope-test" {
		t.Errorf("Store = %+v, want badger at /tmp/geoscope-test", cfg.Store)
	}
	if len(cfg.Reputation.DatacenterCIDRs) != 1 || cfg.Reputation.DatacenterCIDRs[0] != "198.51.100.0/24" {
		t.Errorf("DatacenterCIDRs = %v", cfg.Reputation.DatacenterCIDRs)
	}
	if got := strings.Join(cfg.Reputation.HostingKeywords, "|"); got != "ovh|hetzner" {
		t.Errorf("HostingKeywords = %q, want ovh|hetzner", got)
	}
	if cfg.Policy.Risk.ProxyPoints != 50 {
		t.Errorf("Policy.Risk.ProxyPoints = %d, want 50", cfg.Policy.Risk.ProxyPoints)
	}
	if cfg.Policy.Risk.HostingPoints != 35 {
		t.Errorf("Policy.Risk.HostingPoints = %d, want default 35", cfg.Policy.Risk.HostingPoints)
	}
	if cfg.Policy.Behavior.TimingCheck != policy.TimingCheckCadence {
		t.Errorf("TimingCheck = %q, want cadence", cfg.Policy.Behavior.TimingCheck)
	}
	if cfg.Policy.Risk.Wording.Factors[models.FactorProxy] == "" {
		t.Error("default wording should be installed after load")
	}
}

func TestLoadWithKoanfRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected validation error for unknown store backend")
	}
	if !strings.Contains(err.Error(), "STORE_BACKEND") {
		t.Errorf("error = %v, want mention of STORE_BACKEND", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"rate limit without window", func(c *Config) { c.Server.RateLimitWindow = 0 }, "RATE_LIMIT_WINDOW"},
		{"rate limit disabled without window", func(c *Config) {
			c.Server.RateLimitReqs = 0
			c.Server.RateLimitWindow = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"badger without path", func(c *Config) {
			c.Store.Backend = StoreBackendBadger
			c.Store.BadgerPath = ""
		}, "BADGER_PATH"},
		{"redis without addr", func(c *Config) {
			c.Store.Backend = StoreBackendRedis
			c.Store.RedisAddr = ""
		}, "REDIS_ADDR"},
		{"redis ok", func(c *Config) { c.Store.Backend = StoreBackendRedis }, ""},
		{"bad cidr", func(c *Config) { c.Reputation.DatacenterCIDRs = []string{"10.0.0.0/99"} }, "datacenter CIDR"},
		{"negative reputation cache", func(c *Config) { c.Reputation.CacheSize = -1 }, "REPUTATION_CACHE_SIZE"},
		{"zero reputation cache ttl", func(c *Config) { c.Reputation.CacheTTL = 0 }, "REPUTATION_CACHE_TTL"},
		{"alert threshold range", func(c *Config) { c.Events.AlertThreshold = 101 }, "EVENTS_ALERT_THRESHOLD"},
		{"alert threshold ignored when disabled", func(c *Config) {
			c.Events.Enabled = false
			c.Events.AlertThreshold = 500
		}, ""},
		{"policy levels inverted", func(c *Config) { c.Policy.Risk.MediumLevelAbove = 80 }, "invalid policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging = LoggingConfig{Level: "warn", Format: "console", Caller: true}

	lc := cfg.LoggingOptions()
	if lc.Level != "warn" || lc.Format != "console" || !lc.Caller {
		t.Errorf("LoggingOptions() = %+v", lc)
	}
	if !lc.Timestamp || lc.Output == nil {
		t.Error("LoggingOptions should keep logger defaults for timestamp and output")
	}
}
