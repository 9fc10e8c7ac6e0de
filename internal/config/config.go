// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package config

import (
	"time"

	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/policy"
)

// Store backends.
const (
	StoreBackendMemory = "memory"
	StoreBackendBadger = "badger"
	StoreBackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Store      StoreConfig      `koanf:"store"`
	GeoIP      GeoIPConfig      `koanf:"geoip"`
	Reputation ReputationConfig `koanf:"reputation"`
	Events     EventsConfig     `koanf:"events"`
	Policy     policy.Policy    `koanf:"policy"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// Per-IP limit on the capture endpoint. Zero disables the limiter.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// StoreConfig selects and configures the capture record store.
type StoreConfig struct {
	// Backend is memory, badger or redis.
	Backend string `koanf:"backend"`

	// TTL bounds how long records are kept. Zero keeps them forever.
	TTL time.Duration `koanf:"ttl"`

	// MaintenanceInterval is how often expired records are swept and, for
	// badger, value log space is reclaimed.
	MaintenanceInterval time.Duration `koanf:"maintenance_interval"`

	BadgerPath string `koanf:"badger_path"`

	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of remote stores.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// GeoIPConfig points at optional MaxMind databases. Empty paths disable the
// corresponding lookup.
type GeoIPConfig struct {
	CityDB        string `koanf:"city_db"`
	ASNDB         string `koanf:"asn_db"`
	AnonymousIPDB string `koanf:"anonymous_ip_db"`
}

// ReputationConfig extends the built-in hosting detection.
type ReputationConfig struct {
	Enabled         bool     `koanf:"enabled"`
	DatacenterCIDRs []string `koanf:"datacenter_cidrs"`
	HostingKeywords []string `koanf:"hosting_keywords"`

	// CacheSize bounds the per-IP result cache; 0 disables it.
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// EventsConfig controls verdict event publication.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// AlertThreshold is the minimum risk score of an alto verdict that
	// raises an alert.
	AlertThreshold int `koanf:"alert_threshold"`

	// BufferSize is the per-subscriber output buffer of the in-process
	// pub/sub.
	BufferSize int64 `koanf:"buffer_size"`
}

// LoggingOptions converts the logging section into the logger's config.
func (c *Config) LoggingOptions() logging.Config {
	lc := logging.DefaultConfig()
	if c.Logging.Level != "" {
		lc.Level = c.Logging.Level
	}
	if c.Logging.Format != "" {
		lc.Format = c.Logging.Format
	}
	lc.Caller = c.Logging.Caller
	return lc
}

// Load reads configuration from defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
