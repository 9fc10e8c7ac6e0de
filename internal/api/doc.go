// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

/*
Package api exposes the geoscope HTTP surface on a chi router.

Endpoints:

	POST /api/v1/captures                      ingest a collector payload
	GET  /api/v1/sessions/{session_id}         stored capture and analysis
	GET  /api/v1/sessions/{session_id}/risk    risk report, ?recompute=true re-runs the pipeline
	GET  /api/v1/health                        store health
	GET  /metrics                              Prometheus scrape endpoint

Every JSON response uses the models.APIResponse envelope. Errors carry one
of the codes documented on models.APIError.

The global middleware stack is request ID, real IP, panic recovery, CORS
and Prometheus metrics. Capture submissions are additionally rate limited
per client IP with go-chi/httprate and capped in size.
*/
package api
