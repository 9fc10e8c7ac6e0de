// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/geoscope/internal/analysis"
	"github.com/tomtom215/geoscope/internal/ingest"
	"github.com/tomtom215/geoscope/internal/risk"
	"github.com/tomtom215/geoscope/internal/store"
	"github.com/tomtom215/geoscope/internal/validation"
)

// respondCaptureError maps decoder failures. Boundary validation failures
// carry per-field details; anything else is undecodable JSON.
func respondCaptureError(w http.ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
		return
	}
	if errors.Is(err, ingest.ErrInvalidCapture) {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Capture body is not valid JSON", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to decode capture", err)
}

// respondServiceError maps analysis and store failures to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No capture stored for this session", nil)
	case errors.Is(err, store.ErrUnavailable):
		w.Header().Set("Retry-After", "30")
		respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Verdict store is temporarily unavailable", err)
	case errors.Is(err, risk.ErrIncompleteInput), errors.Is(err, analysis.ErrNilCapture):
		respondError(w, http.StatusInternalServerError, "ANALYSIS_ERROR", "Failed to analyze capture", err)
	default:
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to access verdict store", err)
	}
}
