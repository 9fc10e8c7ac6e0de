// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package behavior reduces mouse, keyboard and scroll streams to pattern
// statistics and an automation score.
//
// Analyze is a pure function of its input: the same streams always produce
// the same profile. Streams with too few samples produce zero statistics
// rather than errors.
package behavior

import (
	"math"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// Analyzer scores interaction streams under a fixed policy.
type Analyzer struct {
	cfg    policy.Behavior
	timing TimingCheck
}

// NewAnalyzer creates an analyzer. A nil timing check selects the one named
// by cfg.TimingCheck.
func NewAnalyzer(cfg policy.Behavior, timing TimingCheck) *Analyzer {
	if timing == nil {
		timing = TimingCheckFor(cfg)
	}
	return &Analyzer{cfg: cfg, timing: timing}
}

// Analyze builds the behavior profile for one capture.
func (a *Analyzer) Analyze(s models.BehaviorStreams) models.BehaviorProfile {
	mouse, roboticMouse := a.mouseStats(s.MousePoints)
	keyboard, roboticTyping := a.keyboardStats(s.KeyEvents)

	flags := models.AutomationFlags{
		RoboticMouse:     roboticMouse,
		RoboticTyping:    roboticTyping,
		SuspiciousTiming: a.timing.Suspicious(s),
	}

	return models.BehaviorProfile{
		Mouse:           mouse,
		Keyboard:        keyboard,
		Scroll:          scrollStats(s.ScrollPoints),
		AutomationScore: a.automationScore(flags),
		Engagement:      engagement(s),
		Flags:           flags,
	}
}

// automationScore adds the weight of every tripped flag, clamped to [0,100].
func (a *Analyzer) automationScore(f models.AutomationFlags) int {
	score := 0
	if f.RoboticMouse {
		score += a.cfg.RoboticMouseWeight
	}
	if f.RoboticTyping {
		score += a.cfg.RoboticTypingWeight
	}
	if f.SuspiciousTiming {
		score += a.cfg.SuspiciousTimingWeight
	}
	return clampScore(score)
}

func (a *Analyzer) nonZero(v float64) float64 {
	if v == 0 {
		return v + a.cfg.ZeroDenominatorBias
	}
	return v
}

func (a *Analyzer) mouseStats(points []models.MousePoint) (models.MouseStats, bool) {
	stats := models.MouseStats{SampleCount: len(points)}
	if len(points) < 2 {
		return stats, false
	}

	var velocitySum float64
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		dist := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		dt := a.nonZero(math.Abs(cur.T - prev.T))
		velocitySum += dist / dt
	}
	stats.AvgVelocity = velocitySum / float64(len(points)-1)

	linear := 0
	for i := 2; i < len(points); i++ {
		p1, p2, p3 := points[i-2], points[i-1], points[i]
		slope1 := (p2.Y - p1.Y) / a.nonZero(p2.X-p1.X)
		slope2 := (p3.Y - p2.Y) / a.nonZero(p3.X-p2.X)
		if math.Abs(slope1-slope2) < a.cfg.LinearSlopeTolerance {
			linear++
		}
	}
	stats.LinearRatio = float64(linear) / float64(len(points))

	robotic := stats.SampleCount >= a.cfg.RoboticMouseMinSamples &&
		stats.LinearRatio > a.cfg.RoboticMouseLinearRatio
	return stats, robotic
}

func (a *Analyzer) keyboardStats(events []models.KeyEvent) (models.KeyboardStats, bool) {
	stats := models.KeyboardStats{SampleCount: len(events)}
	if len(events) < 2 {
		return stats, false
	}

	intervals := make([]float64, 0, len(events)-1)
	for i := 1; i < len(events); i++ {
		intervals = append(intervals, events[i].T-events[i-1].T)
	}

	mean, variance := meanVariance(intervals)
	stats.AvgIntervalMS = mean
	stats.IntervalVariance = variance
	if mean > 0 {
		stats.TypingSpeed = 60000 / mean
	}

	robotic := stats.SampleCount >= a.cfg.RoboticTypingMinSamples &&
		stats.IntervalVariance < a.cfg.RoboticTypingMaxVariance
	return stats, robotic
}

func scrollStats(points []models.ScrollPoint) models.ScrollStats {
	stats := models.ScrollStats{SampleCount: len(points)}
	if len(points) == 0 {
		return stats
	}

	stats.MaxDepth = points[0].Y
	var distance, elapsed float64
	for i, p := range points {
		if p.Y > stats.MaxDepth {
			stats.MaxDepth = p.Y
		}
		if i > 0 {
			distance += math.Abs(p.Y - points[i-1].Y)
			elapsed += math.Abs(p.T - points[i-1].T)
		}
	}
	if elapsed > 0 {
		stats.AvgSpeed = distance / elapsed
	}
	return stats
}

// engagement uses the collector's session duration when it has one and the
// span of observed events otherwise.
func engagement(s models.BehaviorStreams) models.Engagement {
	e := models.Engagement{
		TotalInteractions: len(s.MousePoints) + len(s.KeyEvents) + len(s.ScrollPoints),
	}

	if s.SessionDurationMS != nil && *s.SessionDurationMS > 0 {
		e.SessionDurationMS = *s.SessionDurationMS
	} else {
		e.SessionDurationMS = int64(math.Round(eventSpan(s)))
	}

	if e.SessionDurationMS > 0 {
		e.InteractionFrequency = float64(e.TotalInteractions) / (float64(e.SessionDurationMS) / 1000)
	}
	return e
}

func eventSpan(s models.BehaviorStreams) float64 {
	first, last := math.Inf(1), math.Inf(-1)
	observe := func(t float64) {
		first = math.Min(first, t)
		last = math.Max(last, t)
	}
	for _, p := range s.MousePoints {
		observe(p.T)
	}
	for _, k := range s.KeyEvents {
		observe(k.T)
	}
	for _, p := range s.ScrollPoints {
		observe(p.T)
	}
	if last < first {
		return 0
	}
	return last - first
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, variance
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
