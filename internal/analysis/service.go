// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/store"
)

// Publisher announces new analysis results.
type Publisher interface {
	PublishVerdict(ctx context.Context, rec *models.CaptureRecord) error
}

// Service analyzes captures, persists them and answers queries.
type Service struct {
	pipeline  *Pipeline
	store     store.Store
	publisher Publisher
	now       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPublisher publishes every new or recomputed result.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a service over pipeline and st.
func NewService(pipeline *Pipeline, st store.Store, opts ...ServiceOption) *Service {
	s := &Service{
		pipeline: pipeline,
		store:    st,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest analyzes c and stores the capture with its result. A capture for
// an existing session replaces the earlier record.
func (s *Service) Ingest(ctx context.Context, c *models.RawCapture) (*models.CaptureRecord, error) {
	if c == nil {
		return nil, ErrNilCapture
	}
	ctx = logging.ContextWithSessionID(ctx, logging.MaskSessionID(c.SessionID))

	result, err := s.pipeline.Run(c)
	if err != nil {
		return nil, err
	}

	rec := &models.CaptureRecord{
		Capture:  *c,
		Analysis: result,
		StoredAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save capture %s: %w", logging.MaskSessionID(c.SessionID), err)
	}
	metrics.CapturesIngested.Inc()

	logging.Ctx(ctx).Info().
		Int("risk_score", result.RiskVerdict.RiskScore).
		Str("risk_level", string(result.RiskVerdict.RiskLevel)).
		Int("automation_score", result.BehaviorProfile.AutomationScore).
		Int("location_consistency", result.FusedLocation.LocationConsistencyScore).
		Msg("Capture analyzed")

	s.publish(ctx, rec)
	return rec, nil
}

// Record returns the stored record for sessionID.
func (s *Service) Record(ctx context.Context, sessionID string) (*models.CaptureRecord, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return rec, nil
}

// Report returns the risk report for sessionID. With recompute set, or when
// the stored record has no analysis, the capture is analyzed again with the
// current policy and the new result is saved. The second return value tells
// whether that happened.
func (s *Service) Report(ctx context.Context, sessionID string, recompute bool) (models.RiskReport, bool, error) {
	rec, err := s.Record(ctx, sessionID)
	if err != nil {
		return models.RiskReport{}, false, err
	}
	ctx = logging.ContextWithSessionID(ctx, logging.MaskSessionID(sessionID))

	recomputed := false
	if recompute || rec.Analysis == nil {
		result, err := s.pipeline.Run(&rec.Capture)
		if err != nil {
			return models.RiskReport{}, false, err
		}
		rec.Analysis = result
		rec.StoredAt = s.now().UTC()
		if err := s.store.Save(ctx, rec); err != nil {
			return models.RiskReport{}, false, fmt.Errorf("save recomputed session: %w", err)
		}
		recomputed = true
		s.publish(ctx, rec)
	}

	return models.NewRiskReport(rec.Capture.SessionID, rec.Analysis), recomputed, nil
}

// Ping reports store health.
func (s *Service) Ping(ctx context.Context) error {
	return store.Ping(ctx, s.store)
}

// publish failures never fail the request; the result is already stored.
func (s *Service) publish(ctx context.Context, rec *models.CaptureRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishVerdict(ctx, rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish verdict event")
	}
}
