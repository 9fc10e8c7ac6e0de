// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package models

// BehaviorProfile summarizes the interaction streams of one capture.
type BehaviorProfile struct {
	Mouse           MouseStats      `json:"mouse_stats"`
	Keyboard        KeyboardStats   `json:"keyboard_stats"`
	Scroll          ScrollStats     `json:"scroll_stats"`
	AutomationScore int             `json:"automation_score"`
	Engagement      Engagement      `json:"engagement"`
	Flags           AutomationFlags `json:"flags"`
}

// MouseStats describes cursor movement.
type MouseStats struct {
	SampleCount int     `json:"sample_count"`
	AvgVelocity float64 `json:"avg_velocity"`
	LinearRatio float64 `json:"linear_ratio"`
}

// KeyboardStats describes keystroke cadence. Intervals are in milliseconds.
type KeyboardStats struct {
	SampleCount      int     `json:"sample_count"`
	AvgIntervalMS    float64 `json:"avg_interval_ms"`
	IntervalVariance float64 `json:"interval_variance"`
	TypingSpeed      float64 `json:"typing_speed"`
}

// ScrollStats describes page scrolling.
type ScrollStats struct {
	SampleCount int     `json:"sample_count"`
	MaxDepth    float64 `json:"max_depth"`
	AvgSpeed    float64 `json:"avg_speed"`
}

// Engagement describes overall interaction density.
type Engagement struct {
	InteractionFrequency float64 `json:"interaction_frequency"`
	TotalInteractions    int     `json:"total_interactions"`
	SessionDurationMS    int64   `json:"session_duration_ms"`
}

// AutomationFlags records which robotic indicators tripped.
type AutomationFlags struct {
	RoboticMouse     bool `json:"robotic_mouse"`
	RoboticTyping    bool `json:"robotic_typing"`
	SuspiciousTiming bool `json:"suspicious_timing"`
}
