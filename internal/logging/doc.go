// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package logging provides zerolog-based structured logging for Geoscope.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", ":8080").Msg("HTTP server listening")
//	logging.Err(err).Msg("Failed to open store")
//
//	// With request, correlation and session IDs from the context
//	logging.Ctx(ctx).Info().Int("risk_score", 95).Msg("Capture analyzed")
//
// # Configuration
//
// Environment Variables (read through internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Adapters
//
// NewSlogLogger returns a *slog.Logger backed by zerolog. It is handed to
// sutureslog for supervisor events and to watermill for the event bus.
//
// # Visitor data
//
// Client addresses and session identifiers are visitor data. Log them through
// MaskIP and MaskSessionID.
//
// Always terminate log chains with .Msg() or .Send().
package logging
