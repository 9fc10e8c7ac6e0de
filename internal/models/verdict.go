// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package models

import "time"

// RiskLevel is the coarse classification of a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "bajo"
	RiskMedium RiskLevel = "medio"
	RiskHigh   RiskLevel = "alto"
)

// FactorKind tags a triggered risk rule. Recommendations are keyed on the
// tag, never on the display text.
type FactorKind string

const (
	FactorHighAutomation        FactorKind = "high_automation"
	FactorPossibleAutomation    FactorKind = "possible_automation"
	FactorLocationInconsistency FactorKind = "location_inconsistency"
	FactorProxy                 FactorKind = "proxy"
	FactorHosting               FactorKind = "hosting"
)

// Factor is one triggered risk rule.
type Factor struct {
	Kind        FactorKind `json:"kind"`
	Points      int        `json:"points"`
	Description string     `json:"description"`
}

// RiskVerdict is the final bounded risk decision for a capture.
type RiskVerdict struct {
	RiskScore       int       `json:"risk_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	RiskFactors     []Factor  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
}

// HasFactor reports whether a rule of the given kind fired.
func (v *RiskVerdict) HasFactor(kind FactorKind) bool {
	for _, f := range v.RiskFactors {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// AnalysisResult bundles the three core outputs for one capture.
type AnalysisResult struct {
	FusedLocation     FusedLocation   `json:"fused_location"`
	BehaviorProfile   BehaviorProfile `json:"behavior_profile"`
	RiskVerdict       RiskVerdict     `json:"risk_verdict"`
	AnalysisTimestamp time.Time       `json:"analysis_timestamp"`
}

// CaptureRecord is what the store persists per session.
type CaptureRecord struct {
	Capture  RawCapture      `json:"capture"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
	StoredAt time.Time       `json:"stored_at"`
}

// RiskReport is the query view of a session's verdict.
type RiskReport struct {
	SessionID         string    `json:"session_id"`
	RiskScore         int       `json:"risk_score"`
	RiskLevel         RiskLevel `json:"risk_level"`
	RiskFactors       []string  `json:"risk_factors"`
	Recommendations   []string  `json:"recommendations"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// NewRiskReport projects an analysis into the query view.
func NewRiskReport(sessionID string, a *AnalysisResult) RiskReport {
	factors := make([]string, 0, len(a.RiskVerdict.RiskFactors))
	for _, f := range a.RiskVerdict.RiskFactors {
		factors = append(factors, f.Description)
	}
	recs := make([]string, len(a.RiskVerdict.Recommendations))
	copy(recs, a.RiskVerdict.Recommendations)
	return RiskReport{
		SessionID:         sessionID,
		RiskScore:         a.RiskVerdict.RiskScore,
		RiskLevel:         a.RiskVerdict.RiskLevel,
		RiskFactors:       factors,
		Recommendations:   recs,
		AnalysisTimestamp: a.AnalysisTimestamp,
	}
}
