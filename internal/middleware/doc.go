// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

/*
Package middleware provides the HTTP middleware shared by the geoscope API.

Key Components:

  - RequestID: request and correlation IDs for tracing, mirrored into the
    logging context so every log line of a request carries them
  - PrometheusMetrics: request counters and latency histograms labelled by
    the chi route pattern rather than the raw path, which would otherwise
    explode cardinality with session IDs
  - Compression: gzip for large JSON bodies such as stored captures with
    their pointer samples

All middleware use the http.HandlerFunc shape. The api package adapts them
to chi with a small wrapper:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Usage Example - Request ID:

	func handler(w http.ResponseWriter, r *http.Request) {
	    logging.Ctx(r.Context()).Info().Msg("handling capture")
	    id := middleware.GetRequestID(r.Context())
	    _ = id
	}
*/
package middleware
