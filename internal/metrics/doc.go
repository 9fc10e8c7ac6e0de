// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package metrics defines the Prometheus instrumentation for Geoscope.
//
// All collectors are registered on the default registry through promauto and
// exposed by the API at /metrics. Metric names are prefixed with geoscope_.
//
// Groups:
//   - Analysis: ingestion counts, analysis latency, verdict levels, factors,
//     automation score distribution, GPS validity and precision tiers
//   - Reputation: lookups by source and outcome, result cache hits and misses
//   - Store: operation latency, failures, circuit breaker state
//   - Event bus: published events, publish failures, raised alerts
//   - API: request count, latency, in-flight requests
package metrics
