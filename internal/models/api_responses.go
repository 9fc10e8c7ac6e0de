// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" with Data populated, or "error" with Error populated.
//
//	{
//	  "status": "success",
//	  "data": {"session_id": "abc", "risk_score": 95, "risk_level": "alto"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 2}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing. QueryTimeMS is omitted when zero.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Recomputed  bool      `json:"recomputed,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes used by the API:
//   - VALIDATION_ERROR: the capture payload failed boundary validation
//   - INVALID_JSON: the body could not be decoded
//   - PAYLOAD_TOO_LARGE: the body exceeded the configured limit
//   - INVALID_PARAMETER: a path or query parameter is malformed
//   - NOT_FOUND: no capture stored for the session
//   - STORE_ERROR: the verdict store failed
//   - STORE_UNAVAILABLE: the store circuit breaker is open
//   - ANALYSIS_ERROR: the pipeline could not produce a verdict
//   - METHOD_NOT_ALLOWED: the route exists with another method
//   - RATE_LIMIT_EXCEEDED: too many captures from one client
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
