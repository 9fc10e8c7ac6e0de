// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package behavior

import (
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// linePoints returns n points on y = 2x with irregular timestamps.
func linePoints(n int) []models.MousePoint {
	points := make([]models.MousePoint, n)
	t := 0.0
	for i := range points {
		t += float64(10 + (i*7)%13)
		points[i] = models.MousePoint{X: float64(i * 10), Y: float64(i * 20), T: t}
	}
	return points
}

// zigzagPoints returns n points whose direction alternates every step.
func zigzagPoints(n int) []models.MousePoint {
	points := make([]models.MousePoint, n)
	for i := range points {
		y := 0.0
		if i%2 == 1 {
			y = 50
		}
		points[i] = models.MousePoint{X: float64(i * 10), Y: y, T: float64(i * 17)}
	}
	return points
}

func keyEvents(times ...float64) []models.KeyEvent {
	events := make([]models.KeyEvent, len(times))
	for i, t := range times {
		events[i] = models.KeyEvent{T: t}
	}
	return events
}

func newDefaultAnalyzer() *Analyzer {
	return NewAnalyzer(policy.Default().Behavior, nil)
}

func TestAnalyze_ScenarioD_RoboticMouseOnly(t *testing.T) {
	profile := newDefaultAnalyzer().Analyze(models.BehaviorStreams{
		MousePoints: linePoints(20),
		KeyEvents:   keyEvents(0, 130, 390),
	})

	if !profile.Flags.RoboticMouse {
		t.Errorf("robotic mouse not flagged, linear_ratio = %v", profile.Mouse.LinearRatio)
	}
	if profile.Flags.RoboticTyping || profile.Flags.SuspiciousTiming {
		t.Errorf("unexpected flags: %+v", profile.Flags)
	}
	if profile.AutomationScore != 30 {
		t.Errorf("automation_score = %d, want 30", profile.AutomationScore)
	}
}

func TestAnalyze_MouseStats(t *testing.T) {
	a := newDefaultAnalyzer()

	tests := []struct {
		name         string
		points       []models.MousePoint
		wantVelocity float64
		wantRatio    float64
		wantRobotic  bool
	}{
		{
			name:   "empty",
			points: nil,
		},
		{
			name:   "single point",
			points: []models.MousePoint{{X: 1, Y: 1, T: 5}},
		},
		{
			name:         "one step",
			points:       []models.MousePoint{{X: 0, Y: 0, T: 0}, {X: 3, Y: 4, T: 10}},
			wantVelocity: 0.5,
		},
		{
			name:         "zero elapsed time is biased",
			points:       []models.MousePoint{{X: 0, Y: 0, T: 0}, {X: 3, Y: 4, T: 0}},
			wantVelocity: 5 / 0.001,
		},
		{
			name:        "straight line",
			points:      linePoints(20),
			wantRatio:   18.0 / 20.0,
			wantRobotic: true,
		},
		{
			name:      "ten collinear points sit on the ratio boundary",
			points:    linePoints(10),
			wantRatio: 0.8,
		},
		{
			name:      "zigzag",
			points:    zigzagPoints(20),
			wantRatio: 0,
		},
		{
			name: "vertical moves are linear",
			points: []models.MousePoint{
				{X: 5, Y: 0, T: 0}, {X: 5, Y: 10, T: 10}, {X: 5, Y: 20, T: 20},
			},
			wantVelocity: 1,
			wantRatio:    1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, robotic := a.mouseStats(tt.points)
			if stats.SampleCount != len(tt.points) {
				t.Errorf("sample_count = %d, want %d", stats.SampleCount, len(tt.points))
			}
			if tt.wantVelocity != 0 && math.Abs(stats.AvgVelocity-tt.wantVelocity) > 1e-9 {
				t.Errorf("avg_velocity = %v, want %v", stats.AvgVelocity, tt.wantVelocity)
			}
			if math.Abs(stats.LinearRatio-tt.wantRatio) > 1e-9 {
				t.Errorf("linear_ratio = %v, want %v", stats.LinearRatio, tt.wantRatio)
			}
			if robotic != tt.wantRobotic {
				t.Errorf("robotic = %v, want %v", robotic, tt.wantRobotic)
			}
		})
	}
}

func TestAnalyze_KeyboardStats(t *testing.T) {
	a := newDefaultAnalyzer()

	tests := []struct {
		name         string
		events       []models.KeyEvent
		wantAvg      float64
		wantVariance float64
		wantSpeed    float64
		wantRobotic  bool
	}{
		{
			name:   "no keys",
			events: nil,
		},
		{
			name:   "single key",
			events: keyEvents(100),
		},
		{
			name:        "metronome typing",
			events:      keyEvents(0, 100, 200, 300, 400),
			wantAvg:     100,
			wantSpeed:   600,
			wantRobotic: true,
		},
		{
			name:      "metronome but too few keys",
			events:    keyEvents(0, 100, 200, 300),
			wantAvg:   100,
			wantSpeed: 600,
		},
		{
			name:         "human typing",
			events:       keyEvents(0, 120, 200, 380, 450),
			wantAvg:      112.5,
			wantVariance: 1868.75,
			wantSpeed:    60000 / 112.5,
		},
		{
			name:         "small jitter still robotic",
			events:       keyEvents(0, 100, 202, 300, 402),
			wantAvg:      100.5,
			wantVariance: 2.75,
			wantSpeed:    60000 / 100.5,
			wantRobotic:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, robotic := a.keyboardStats(tt.events)
			if stats.SampleCount != len(tt.events) {
				t.Errorf("sample_count = %d, want %d", stats.SampleCount, len(tt.events))
			}
			if math.Abs(stats.AvgIntervalMS-tt.wantAvg) > 1e-9 {
				t.Errorf("avg_interval_ms = %v, want %v", stats.AvgIntervalMS, tt.wantAvg)
			}
			if math.Abs(stats.IntervalVariance-tt.wantVariance) > 1e-9 {
				t.Errorf("interval_variance = %v, want %v", stats.IntervalVariance, tt.wantVariance)
			}
			if math.Abs(stats.TypingSpeed-tt.wantSpeed) > 1e-9 {
				t.Errorf("typing_speed = %v, want %v", stats.TypingSpeed, tt.wantSpeed)
			}
			if robotic != tt.wantRobotic {
				t.Errorf("robotic = %v, want %v", robotic, tt.wantRobotic)
			}
		})
	}
}

func TestAnalyze_ScrollStats(t *testing.T) {
	stats := scrollStats([]models.ScrollPoint{
		{Y: 0, T: 0}, {Y: 100, T: 100}, {Y: 50, T: 200}, {Y: 300, T: 300},
	})

	if stats.SampleCount != 4 {
		t.Errorf("sample_count = %d, want 4", stats.SampleCount)
	}
	if stats.MaxDepth != 300 {
		t.Errorf("max_depth = %v, want 300", stats.MaxDepth)
	}
	if want := 400.0 / 300.0; math.Abs(stats.AvgSpeed-want) > 1e-9 {
		t.Errorf("avg_speed = %v, want %v", stats.AvgSpeed, want)
	}

	if got := scrollStats(nil); got != (models.ScrollStats{}) {
		t.Errorf("empty stream = %+v, want zero value", got)
	}
	if got := scrollStats([]models.ScrollPoint{{Y: 40, T: 10}, {Y: 80, T: 10}}); got.AvgSpeed != 0 {
		t.Errorf("zero elapsed avg_speed = %v, want 0", got.AvgSpeed)
	}
}

func TestAnalyze_Engagement(t *testing.T) {
	duration := int64(10000)

	tests := []struct {
		name         string
		streams      models.BehaviorStreams
		wantTotal    int
		wantDuration int64
		wantFreq     float64
	}{
		{
			name: "collector duration",
			streams: models.BehaviorStreams{
				MousePoints:       linePoints(10),
				KeyEvents:         keyEvents(0, 100, 200, 300, 400, 500, 600, 700, 800, 900),
				SessionDurationMS: &duration,
			},
			wantTotal:    20,
			wantDuration: 10000,
			wantFreq:     2,
		},
		{
			name: "event span",
			streams: models.BehaviorStreams{
				KeyEvents:    keyEvents(1000, 2000),
				ScrollPoints: []models.ScrollPoint{{Y: 0, T: 3000}, {Y: 10, T: 5000}},
			},
			wantTotal:    4,
			wantDuration: 4000,
			wantFreq:     1,
		},
		{
			name: "no duration",
			streams: models.BehaviorStreams{
				KeyEvents: keyEvents(1000),
			},
			wantTotal: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engagement(tt.streams)
			if e.TotalInteractions != tt.wantTotal {
				t.Errorf("total = %d, want %d", e.TotalInteractions, tt.wantTotal)
			}
			if e.SessionDurationMS != tt.wantDuration {
				t.Errorf("duration = %d, want %d", e.SessionDurationMS, tt.wantDuration)
			}
			if math.Abs(e.InteractionFrequency-tt.wantFreq) > 1e-9 {
				t.Errorf("frequency = %v, want %v", e.InteractionFrequency, tt.wantFreq)
			}
		})
	}
}

func TestAutomationScore_Monotonic(t *testing.T) {
	a := newDefaultAnalyzer()
	combos := []models.AutomationFlags{
		{},
		{RoboticMouse: true},
		{RoboticTyping: true},
		{SuspiciousTiming: true},
		{RoboticMouse: true, RoboticTyping: true},
		{RoboticMouse: true, SuspiciousTiming: true},
		{RoboticTyping: true, SuspiciousTiming: true},
		{RoboticMouse: true, RoboticTyping: true, SuspiciousTiming: true},
	}

	subset := func(x, y models.AutomationFlags) bool {
		return (!x.RoboticMouse || y.RoboticMouse) &&
			(!x.RoboticTyping || y.RoboticTyping) &&
			(!x.SuspiciousTiming || y.SuspiciousTiming)
	}

	for _, x := range combos {
		for _, y := range combos {
			if subset(x, y) && a.automationScore(x) > a.automationScore(y) {
				t.Errorf("score(%+v)=%d > score(%+v)=%d", x, a.automationScore(x), y, a.automationScore(y))
			}
		}
	}

	if got := a.automationScore(combos[len(combos)-1]); got != 100 {
		t.Errorf("all flags = %d, want 100", got)
	}
}

func TestAutomationScore_Clamped(t *testing.T) {
	cfg := policy.Default().Behavior
	cfg.RoboticMouseWeight = 60
	cfg.RoboticTypingWeight = 60
	a := NewAnalyzer(cfg, nil)

	got := a.automationScore(models.AutomationFlags{RoboticMouse: true, RoboticTyping: true})
	if got != 100 {
		t.Errorf("automation_score = %d, want 100", got)
	}
}

func TestAnalyze_PluggableTimingCheck(t *testing.T) {
	always := TimingCheckFunc(func(models.BehaviorStreams) bool { return true })
	profile := NewAnalyzer(policy.Default().Behavior, always).Analyze(models.BehaviorStreams{})

	if !profile.Flags.SuspiciousTiming {
		t.Error("suspicious timing flag not set")
	}
	if profile.AutomationScore != 30 {
		t.Errorf("automation_score = %d, want 30", profile.AutomationScore)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	streams := models.BehaviorStreams{
		MousePoints:  linePoints(25),
		KeyEvents:    keyEvents(0, 90, 210, 260, 400, 515),
		ScrollPoints: []models.ScrollPoint{{Y: 0, T: 0}, {Y: 400, T: 800}},
	}
	a := newDefaultAnalyzer()

	if first, second := a.Analyze(streams), a.Analyze(streams); !reflect.DeepEqual(first, second) {
		t.Errorf("analysis not idempotent:\n%+v\n%+v", first, second)
	}
}
