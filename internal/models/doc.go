// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

/*
Package models defines the data structures shared by the Geoscope packages.

Capture input:

  - RawCapture: one visit with optional GPS fix, IP geolocation results,
    device timezone, interaction streams and network reputation flags
  - IPGeoResult: a single provider answer in normalized form

Analysis output:

  - FusedLocation: cross-validated location with precision tier
  - BehaviorProfile: interaction statistics and automation score
  - RiskVerdict: bounded risk score, level, factors and recommendations
  - RiskReport: the per-session query view of a verdict

Optional values are pointers so that "not reported" differs from zero.
Result types are built fresh per capture and are treated as read-only once
returned.
*/
package models
