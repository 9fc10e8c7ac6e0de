// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package behavior

import (
	"math"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// TimingCheck decides whether event timing looks scripted.
// Implementations must be pure.
type TimingCheck interface {
	Suspicious(s models.BehaviorStreams) bool
}

// TimingCheckFunc adapts a function to TimingCheck.
type TimingCheckFunc func(s models.BehaviorStreams) bool

// Suspicious calls f(s).
func (f TimingCheckFunc) Suspicious(s models.BehaviorStreams) bool {
	return f(s)
}

// NoopTimingCheck never trips.
type NoopTimingCheck struct{}

// Suspicious always returns false.
func (NoopTimingCheck) Suspicious(models.BehaviorStreams) bool {
	return false
}

// CadenceCheck trips when input events arrive at an unnaturally regular
// rate. Deltas are taken within each stream (mouse, key, scroll) and pooled;
// it trips on at least MinEvents deltas whose coefficient of variation is
// below MaxCV.
type CadenceCheck struct {
	MinEvents int
	MaxCV     float64
}

// Suspicious reports whether the combined event cadence is too regular.
func (c CadenceCheck) Suspicious(s models.BehaviorStreams) bool {
	deltas := eventDeltas(s)
	if len(deltas) == 0 || len(deltas) < c.MinEvents {
		return false
	}

	mean, variance := meanVariance(deltas)
	if mean <= 0 {
		return false
	}
	return math.Sqrt(variance)/mean < c.MaxCV
}

// eventDeltas returns the gaps between consecutive events of each stream.
// Gaps never span two streams.
func eventDeltas(s models.BehaviorStreams) []float64 {
	n := max(len(s.MousePoints)-1, 0) + max(len(s.KeyEvents)-1, 0) + max(len(s.ScrollPoints)-1, 0)
	deltas := make([]float64, 0, n)
	for i := 1; i < len(s.MousePoints); i++ {
		deltas = append(deltas, s.MousePoints[i].T-s.MousePoints[i-1].T)
	}
	for i := 1; i < len(s.KeyEvents); i++ {
		deltas = append(deltas, s.KeyEvents[i].T-s.KeyEvents[i-1].T)
	}
	for i := 1; i < len(s.ScrollPoints); i++ {
		deltas = append(deltas, s.ScrollPoints[i].T-s.ScrollPoints[i-1].T)
	}
	return deltas
}

// TimingCheckFor returns the check selected by cfg.TimingCheck.
func TimingCheckFor(cfg policy.Behavior) TimingCheck {
	switch cfg.TimingCheck {
	case policy.TimingCheckCadence:
		return CadenceCheck{MinEvents: cfg.CadenceMinEvents, MaxCV: cfg.CadenceMaxCV}
	default:
		return NoopTimingCheck{}
	}
}
