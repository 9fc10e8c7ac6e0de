// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/geoscope/internal/policy"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/geoscope/config.yaml",
	"/etc/geoscope/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8470,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    4 << 20,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend:             StoreBackendMemory,
			TTL:                 30 * 24 * time.Hour,
			MaintenanceInterval: 10 * time.Minute,
			BadgerPath:          "/data/geoscope",
			RedisAddr:           "127.0.0.1:6379",
			RedisKeyPrefix:      "geoscope:capture:",
			Breaker: BreakerConfig{
				MaxRequests:      3,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Reputation: ReputationConfig{
			Enabled:   true,
			CacheSize: 4096,
			CacheTTL:  10 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:        true,
			AlertThreshold: 70,
			BufferSize:     256,
		},
		Policy: policy.Default(),
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Struct defaults
//  2. Config file (YAML), optional
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// HTTP_PORT -> server.port, STORE_BACKEND -> store.backend
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Display strings are not configurable.
	cfg.Policy = cfg.Policy.WithDefaultWording()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
	"reputation.datacenter_cidrs",
	"reputation.hosting_keywords",
}

// processSliceFields converts comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from defaults or YAML)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables are skipped.
func envTransformFunc(s string) string {
	key := strings.ToLower(s)

	envMappings := map[string]string{
		// Server
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_idle_timeout":     "server.idle_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"http_max_body_bytes":   "server.max_body_bytes",
		"cors_origins":          "server.cors_origins",
		"rate_limit_reqs":       "server.rate_limit_reqs",
		"rate_limit_window":     "server.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Store
		"store_backend":              "store.backend",
		"store_maintenance_interval": "store.maintenance_interval",
		"store_ttl":                  "store.ttl",
		"badger_path":                "store.badger_path",
		"redis_addr":                 "store.redis_addr",
		"redis_password":             "store.redis_password",
		"redis_db":                   "store.redis_db",
		"redis_key_prefix":           "store.redis_key_prefix",
		"breaker_max_requests":       "store.breaker.max_requests",
		"breaker_interval":           "store.breaker.interval",
		"breaker_timeout":            "store.breaker.timeout",
		"breaker_failure_thresh":     "store.breaker.failure_threshold",

		// MaxMind databases
		"geoip_city_db":         "geoip.city_db",
		"geoip_asn_db":          "geoip.asn_db",
		"geoip_anonymous_ip_db": "geoip.anonymous_ip_db",

		// Reputation
		"reputation_enabled":          "reputation.enabled",
		"reputation_datacenter_cidrs": "reputation.datacenter_cidrs",
		"reputation_hosting_keywords": "reputation.hosting_keywords",
		"reputation_cache_size":       "reputation.cache_size",
		"reputation_cache_ttl":        "reputation.cache_ttl",

		// Events
		"events_enabled":         "events.enabled",
		"events_alert_threshold": "events.alert_threshold",
		"events_buffer_size":     "events.buffer_size",

		// Policy
		"policy_timing_check":          "policy.behavior.timing_check",
		"policy_high_level_above":      "policy.risk.high_level_above",
		"policy_medium_level_above":    "policy.risk.medium_level_above",
		"policy_proxy_points":          "policy.risk.proxy_points",
		"policy_hosting_points":        "policy.risk.hosting_points",
		"policy_location_below":        "policy.risk.location_consistency_below",
		"policy_location_points":       "policy.risk.location_inconsistency_points",
		"policy_high_automation_above": "policy.risk.high_automation_above",
		"policy_earth_radius_km":       "policy.geo.earth_radius_km",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
