// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

/*
Package config loads Geoscope configuration.

Configuration is layered with Koanf. Later layers override earlier ones:

 1. Struct defaults (defaultConfig)
 2. A YAML file, taken from CONFIG_PATH or the first of DefaultConfigPaths that exists
 3. Environment variables, mapped through an explicit table

Unmapped environment variables are ignored so unrelated variables cannot leak
into the configuration.

# Sections

  - server: listen address, timeouts, body limit, CORS origins, capture rate limit
  - logging: level, format, caller
  - store: memory, badger or redis backend, TTL, circuit breaker for redis
  - geoip: optional MaxMind City, ASN and Anonymous IP databases
  - reputation: extra datacenter CIDRs and hosting keywords
  - events: verdict events and the alert threshold
  - policy: every weight and threshold of the analysis core

# Environment Variables

  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_MAX_BODY_BYTES
  - CORS_ORIGINS, RATE_LIMIT_REQS, RATE_LIMIT_WINDOW
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - STORE_BACKEND, STORE_TTL, BADGER_PATH
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_KEY_PREFIX
  - GEOIP_CITY_DB, GEOIP_ASN_DB, GEOIP_ANONYMOUS_IP_DB
  - REPUTATION_ENABLED, REPUTATION_DATACENTER_CIDRS, REPUTATION_HOSTING_KEYWORDS,
    REPUTATION_CACHE_SIZE, REPUTATION_CACHE_TTL
  - EVENTS_ENABLED, EVENTS_ALERT_THRESHOLD, EVENTS_BUFFER_SIZE
  - POLICY_TIMING_CHECK, POLICY_HIGH_LEVEL_ABOVE, POLICY_MEDIUM_LEVEL_ABOVE, ...

Comma-separated values are accepted for list settings.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(cfg.LoggingOptions())

Risk factor descriptions and recommendations are fixed Spanish strings and
are not read from any source; Load always installs the default wording.
*/
package config
