// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package eventbus

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/geoscope/internal/models"
)

// Topics
const (
	TopicVerdictCreated = "verdict.created"
	TopicRiskAlert      = "risk.alert"
)

// VerdictEvent is published for every stored analysis result.
type VerdictEvent struct {
	EventID   string    `json:"event_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`

	RiskScore   int                 `json:"risk_score"`
	RiskLevel   models.RiskLevel    `json:"risk_level"`
	RiskFactors []models.FactorKind `json:"risk_factors"`

	AutomationScore          int              `json:"automation_score"`
	LocationConsistencyScore int              `json:"location_consistency_score"`
	EstimatedPrecision       models.Precision `json:"estimated_precision"`
	IsProxy                  bool             `json:"is_proxy"`
	IsHosting                bool             `json:"is_hosting"`

	Campaign          string    `json:"campaign,omitempty"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// NewVerdictEvent builds the event for an analyzed record.
func NewVerdictEvent(rec *models.CaptureRecord) (VerdictEvent, error) {
	if rec == nil || rec.Analysis == nil {
		return VerdictEvent{}, fmt.Errorf("record has no analysis")
	}
	a := rec.Analysis

	kinds := make([]models.FactorKind, 0, len(a.RiskVerdict.RiskFactors))
	for _, f := range a.RiskVerdict.RiskFactors {
		kinds = append(kinds, f.Kind)
	}

	return VerdictEvent{
		EventID:                  uuid.New().String(),
		SessionID:                rec.Capture.SessionID,
		CreatedAt:                time.Now().UTC(),
		RiskScore:                a.RiskVerdict.RiskScore,
		RiskLevel:                a.RiskVerdict.RiskLevel,
		RiskFactors:              kinds,
		AutomationScore:          a.BehaviorProfile.AutomationScore,
		LocationConsistencyScore: a.FusedLocation.LocationConsistencyScore,
		EstimatedPrecision:       a.FusedLocation.EstimatedPrecision,
		IsProxy:                  rec.Capture.Network.IsProxy,
		IsHosting:                rec.Capture.Network.IsHosting,
		Campaign:                 rec.Capture.Campaign,
		AnalysisTimestamp:        a.AnalysisTimestamp,
	}, nil
}

// AlertEvent is emitted for verdicts that cross the alert threshold.
type AlertEvent struct {
	AlertID   string       `json:"alert_id"`
	RaisedAt  time.Time    `json:"raised_at"`
	Threshold int          `json:"threshold"`
	Verdict   VerdictEvent `json:"verdict"`
}

func decodeVerdict(data []byte) (VerdictEvent, error) {
	var ev VerdictEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return VerdictEvent{}, fmt.Errorf("decode verdict event: %w", err)
	}
	return ev, nil
}
