// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package main

import (
	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/eventbus"
	"github.com/tomtom215/geoscope/internal/ingest"
	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/reputation"
)

// initDecoder opens the optional local databases. Missing or unreadable
// databases degrade enrichment and are never fatal. The returned func
// closes whatever was opened.
func initDecoder(cfg *config.Config) (*ingest.Decoder, func()) {
	var opts []ingest.Option
	var closers []func() error

	if cfg.GeoIP.CityDB != "" {
		city, err := ingest.OpenCityDB(cfg.GeoIP.CityDB)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.GeoIP.CityDB).Msg("Local City lookups disabled")
		} else {
			opts = append(opts, ingest.WithCityReader(city))
			closers = append(closers, city.Close)
			logging.Info().Str("path", cfg.GeoIP.CityDB).Msg("Local City database loaded")
		}
	}

	if cfg.Reputation.Enabled {
		checker, err := reputation.Open(cfg.Reputation, cfg.GeoIP)
		if err != nil {
			logging.Warn().Err(err).Msg("IP reputation disabled")
		} else {
			opts = append(opts, ingest.WithReputation(checker))
			closers = append(closers, checker.Close)
			logging.Info().
				Bool("anonymous_ip_db", cfg.GeoIP.AnonymousIPDB != "").
				Bool("asn_db", cfg.GeoIP.ASNDB != "").
				Int("extra_datacenter_cidrs", len(cfg.Reputation.DatacenterCIDRs)).
				Int("result_cache_size", cfg.Reputation.CacheSize).
				Msg("IP reputation enabled")
		}
	}

	return ingest.NewDecoder(opts...), func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logging.Error().Err(err).Msg("Error closing enrichment database")
			}
		}
	}
}

// initEventBus returns nil when events are disabled or the bus cannot start.
func initEventBus(cfg *config.Config) *eventbus.Bus {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Event bus disabled (EVENTS_ENABLED=false)")
		return nil
	}

	busCfg := eventbus.DefaultConfig()
	busCfg.AlertThreshold = cfg.Events.AlertThreshold
	if cfg.Events.BufferSize > 0 {
		busCfg.BufferSize = cfg.Events.BufferSize
	}

	bus, err := eventbus.New(busCfg)
	if err != nil {
		logging.Warn().Err(err).Msg("Event bus disabled")
		return nil
	}
	return bus
}
