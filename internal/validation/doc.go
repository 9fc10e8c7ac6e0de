// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package validation wraps go-playground/validator v10 for boundary checks.
//
// A single validator instance is shared (it caches struct metadata). Field
// names in errors are JSON paths such as "ip_results[1].service_name", and
// failures convert to a VALIDATION_ERROR models.APIError.
//
// Custom tags:
//   - session_id: letters, digits and . _ : -
//
// Validation only rejects captures that cannot be stored or would be too
// large to analyze. Implausible values such as out-of-range GPS coordinates
// are accepted here and handled by the analysis as partial data.
package validation
