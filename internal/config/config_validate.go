// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/tomtom215/geoscope/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateReputation(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQS must not be negative, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL is not a recognized level (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
}

func (c *Config) validateStore() error {
	if c.Store.TTL < 0 {
		return fmt.Errorf("STORE_TTL must not be negative")
	}
	if c.Store.MaintenanceInterval < 0 {
		return fmt.Errorf("STORE_MAINTENANCE_INTERVAL must not be negative")
	}

	switch c.Store.Backend {
	case StoreBackendMemory:
		return nil
	case StoreBackendBadger:
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when STORE_BACKEND=badger")
		}
		return nil
	case StoreBackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
		if c.Store.RedisDB < 0 {
			return fmt.Errorf("REDIS_DB must not be negative, got %d", c.Store.RedisDB)
		}
		if c.Store.Breaker.FailureThreshold == 0 {
			return fmt.Errorf("store.breaker.failure_threshold must be at least 1")
		}
		return nil
	default:
		return fmt.Errorf("STORE_BACKEND must be one of %s, %s, %s (got %q)",
			StoreBackendMemory, StoreBackendBadger, StoreBackendRedis, c.Store.Backend)
	}
}

func (c *Config) validateReputation() error {
	for _, cidr := range c.Reputation.DatacenterCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid datacenter CIDR %q: %w", cidr, err)
		}
	}
	if c.Reputation.CacheSize < 0 {
		return fmt.Errorf("REPUTATION_CACHE_SIZE must be non-negative, got %d", c.Reputation.CacheSize)
	}
	if c.Reputation.CacheSize > 0 && c.Reputation.CacheTTL <= 0 {
		return fmt.Errorf("REPUTATION_CACHE_TTL must be positive when the cache is enabled, got %s", c.Reputation.CacheTTL)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.AlertThreshold < 0 || c.Events.AlertThreshold > 100 {
		return fmt.Errorf("EVENTS_ALERT_THRESHOLD must be within 0-100, got %d", c.Events.AlertThreshold)
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must not be negative")
	}
	return nil
}
