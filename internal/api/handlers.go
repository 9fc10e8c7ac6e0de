// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/geoscope/internal/analysis"
	"github.com/tomtom215/geoscope/internal/ingest"
	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/validation"
)

const healthTimeout = 2 * time.Second

// Handler serves the capture and session endpoints.
type Handler struct {
	service      *analysis.Service
	decoder      *ingest.Decoder
	maxBodyBytes int64
	startTime    time.Time
}

// NewHandler creates a handler. maxBodyBytes caps capture submissions.
func NewHandler(service *analysis.Service, decoder *ingest.Decoder, maxBodyBytes int64) *Handler {
	return &Handler{
		service:      service,
		decoder:      decoder,
		maxBodyBytes: maxBodyBytes,
		startTime:    time.Now(),
	}
}

// CaptureResponse is returned after a capture was analyzed and stored.
type CaptureResponse struct {
	SessionID string                 `json:"session_id"`
	StoredAt  time.Time              `json:"stored_at"`
	Analysis  *models.AnalysisResult `json:"analysis"`
}

// HealthResponse reports process and store health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Store         string  `json:"store"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// CreateCapture ingests one collector payload.
func (h *Handler) CreateCapture(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				"Capture exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", nil)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Failed to read request body", err)
		return
	}

	capture, err := h.decoder.Decode(body, r.RemoteAddr)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected capture")
		respondCaptureError(w, err)
		return
	}

	rec, err := h.service.Ingest(r.Context(), capture)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, CaptureResponse{
		SessionID: rec.Capture.SessionID,
		StoredAt:  rec.StoredAt,
		Analysis:  rec.Analysis,
	}, start)
}

// SessionRecord returns the stored capture and analysis for a session.
func (h *Handler) SessionRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Record(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, rec, start)
}

// SessionRisk returns the risk report for a session. recompute=true runs
// the pipeline again under the current policy.
func (h *Handler) SessionRisk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	recompute := false
	if raw := r.URL.Query().Get("recompute"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "recompute must be a boolean", nil)
			return
		}
		recompute = v
	}

	report, recomputed, err := h.service.Report(r.Context(), sessionID, recompute)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Recomputed:  recomputed,
		},
	})
}

// Health pings the store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:        "healthy",
		Store:         "ok",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	status := http.StatusOK
	if err := h.service.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Store health check failed")
		resp.Status = "degraded"
		resp.Store = "unavailable"
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, resp, start)
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "session_id")
	if err := validation.GetValidator().Var(id, "required,max=128,session_id"); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid session ID", nil)
		return "", false
	}
	return id, true
}
