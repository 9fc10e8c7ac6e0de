// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package main

import (
	"testing"
	"time"

	"github.com/tomtom215/geoscope/internal/config"
)

func TestInitDecoderDegradesOnMissingDatabases(t *testing.T) {
	cfg := &config.Config{
		GeoIP: config.GeoIPConfig{
			CityDB: "/nonexistent/GeoLite2-City.mmdb",
			ASNDB:  "/nonexistent/GeoLite2-ASN.mmdb",
		},
		Reputation: config.ReputationConfig{Enabled: true},
	}

	decoder, cleanup := initDecoder(cfg)
	defer cleanup()

	c, err := decoder.Decode([]byte(`{"session_id":"sess-1"}`), "167.99.10.20")
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if c.Network.IsHosting {
		t.Error("reputation should be disabled when its database fails to open")
	}
}

func TestInitDecoderWithReputation(t *testing.T) {
	cfg := &config.Config{
		Reputation: config.ReputationConfig{
			Enabled:   true,
			CacheSize: 8,
			CacheTTL:  time.Minute,
		},
	}

	decoder, cleanup := initDecoder(cfg)
	defer cleanup()

	c, err := decoder.Decode([]byte(`{"session_id":"sess-2"}`), "167.99.10.20")
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if !c.Network.IsHosting {
		t.Error("built-in datacenter range should flag the client as hosting")
	}
}

func TestInitEventBus(t *testing.T) {
	if bus := initEventBus(&config.Config{}); bus != nil {
		t.Error("initEventBus() with events disabled should return nil")
	}

	bus := initEventBus(&config.Config{Events: config.EventsConfig{Enabled: true, AlertThreshold: 60}})
	if bus == nil {
		t.Fatal("initEventBus() with events enabled returned nil")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
