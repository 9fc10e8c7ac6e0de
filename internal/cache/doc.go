// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package cache provides the in-process data structures used on the
// enrichment path: a TTL-bounded LRU for per-IP reputation results and an
// Aho-Corasick keyword matcher for ASN organization names.
package cache
