// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package policy holds the tunable weights and thresholds of the analysis core.
//
// A Policy is a plain value. Components copy what they need when they are
// constructed, so a Policy handed to a component cannot change its behavior
// afterwards. Alternate policies are built by copying Default() and editing
// the copy before passing it in.
package policy

import (
	"errors"
	"fmt"

	"github.com/tomtom215/geoscope/internal/models"
)

// Policy groups the per-component settings.
type Policy struct {
	Geo      Geo      `koanf:"geo"`
	Behavior Behavior `koanf:"behavior"`
	Risk     Risk     `koanf:"risk"`
}

// Geo configures the fusion engine.
type Geo struct {
	// GPS precision tiers by accuracy radius in meters (inclusive upper bounds).
	VeryHighMaxM float64 `koanf:"very_high_max_m"`
	HighMaxM     float64 `koanf:"high_max_m"`
	MediumMaxM   float64 `koanf:"medium_max_m"`

	EarthRadiusKm float64 `koanf:"earth_radius_km"`

	// Distance buckets (exclusive upper bounds, km).
	ExcellentKm  float64 `koanf:"excellent_km"`
	GoodKm       float64 `koanf:"good_km"`
	AcceptableKm float64 `koanf:"acceptable_km"`

	// Location consistency penalties.
	AcceptableDistancePenalty int `koanf:"acceptable_distance_penalty"`
	LargeDistancePenalty      int `koanf:"large_distance_penalty"`
	TimezoneMismatchPenalty   int `koanf:"timezone_mismatch_penalty"`
	CountryMismatchPenalty    int `koanf:"country_mismatch_penalty"`
	InvalidGPSPenalty         int `koanf:"invalid_gps_penalty"`
}

// Behavior configures the interaction analyzer.
type Behavior struct {
	ZeroDenominatorBias  float64 `koanf:"zero_denominator_bias"`
	LinearSlopeTolerance float64 `koanf:"linear_slope_tolerance"`

	RoboticMouseMinSamples   int     `koanf:"robotic_mouse_min_samples"`
	RoboticMouseLinearRatio  float64 `koanf:"robotic_mouse_linear_ratio"`
	RoboticTypingMinSamples  int     `koanf:"robotic_typing_min_samples"`
	RoboticTypingMaxVariance float64 `koanf:"robotic_typing_max_variance"`

	RoboticMouseWeight     int `koanf:"robotic_mouse_weight"`
	RoboticTypingWeight    int `koanf:"robotic_typing_weight"`
	SuspiciousTimingWeight int `koanf:"suspicious_timing_weight"`

	// TimingCheck selects the suspicious-timing check: "none" or "cadence".
	TimingCheck string `koanf:"timing_check"`
	// CadenceMinEvents and CadenceMaxCV configure the "cadence" check.
	CadenceMinEvents int     `koanf:"cadence_min_events"`
	CadenceMaxCV     float64 `koanf:"cadence_max_cv"`
}

// Risk configures the classifier.
type Risk struct {
	HighAutomationAbove      int `koanf:"high_automation_above"`
	HighAutomationPoints     int `koanf:"high_automation_points"`
	PossibleAutomationAbove  int `koanf:"possible_automation_above"`
	PossibleAutomationPoints int `koanf:"possible_automation_points"`

	LocationConsistencyBelow    int `koanf:"location_consistency_below"`
	LocationInconsistencyPoints int `koanf:"location_inconsistency_points"`

	ProxyPoints   int `koanf:"proxy_points"`
	HostingPoints int `koanf:"hosting_points"`

	HighLevelAbove   int `koanf:"high_level_above"`
	MediumLevelAbove int `koanf:"medium_level_above"`

	Wording Wording `koanf:"-"`
}

// Wording holds the display strings attached to verdicts.
type Wording struct {
	Factors               map[models.FactorKind]string
	LevelRecommendations  map[models.RiskLevel][]string
	FactorRecommendations map[models.FactorKind][]string
}

// Timing check names.
const (
	TimingCheckNone    = "none"
	TimingCheckCadence = "cadence"
)

// Default returns the production policy.
func Default() Policy {
	return Policy{
		Geo: Geo{
			VeryHighMaxM:              10,
			HighMaxM:                  50,
			MediumMaxM:                200,
			EarthRadiusKm:             6371,
			ExcellentKm:               10,
			GoodKm:                    50,
			AcceptableKm:              200,
			AcceptableDistancePenalty: 15,
			LargeDistancePenalty:      45,
			TimezoneMismatchPenalty:   30,
			CountryMismatchPenalty:    20,
			InvalidGPSPenalty:         10,
		},
		Behavior: Behavior{
			ZeroDenominatorBias:      0.001,
			LinearSlopeTolerance:     0.1,
			RoboticMouseMinSamples:   10,
			RoboticMouseLinearRatio:  0.8,
			RoboticTypingMinSamples:  5,
			RoboticTypingMaxVariance: 10,
			RoboticMouseWeight:       30,
			RoboticTypingWeight:      40,
			SuspiciousTimingWeight:   30,
			TimingCheck:              TimingCheckNone,
			CadenceMinEvents:         20,
			CadenceMaxCV:             0.05,
		},
		Risk: Risk{
			HighAutomationAbove:         70,
			HighAutomationPoints:        40,
			PossibleAutomationAbove:     40,
			PossibleAutomationPoints:    20,
			LocationConsistencyBelow:    70,
			LocationInconsistencyPoints: 25,
			ProxyPoints:                 30,
			HostingPoints:               35,
			HighLevelAbove:              70,
			MediumLevelAbove:            40,
			Wording:                     DefaultWording(),
		},
	}
}

// DefaultWording returns the Spanish display strings used by the dashboard.
func DefaultWording() Wording {
	return Wording{
		Factors: map[models.FactorKind]string{
			models.FactorHighAutomation:        "Alto riesgo de automatización",
			models.FactorPossibleAutomation:    "Posible automatización",
			models.FactorLocationInconsistency: "Inconsistencia en la ubicación",
			models.FactorProxy:                 "Uso de proxy detectado",
			models.FactorHosting:               "IP de hosting o datacenter",
		},
		LevelRecommendations: map[models.RiskLevel][]string{
			models.RiskHigh: {
				"Bloquear o restringir el acceso",
				"Revisar manualmente la sesión",
			},
			models.RiskMedium: {
				"Solicitar verificación adicional",
				"Monitorear la actividad de la sesión",
			},
			models.RiskLow: {
				"Permitir el acceso normal",
			},
		},
		FactorRecommendations: map[models.FactorKind][]string{
			models.FactorHighAutomation: {
				"Implementar CAPTCHA",
				"Analizar patrones de comportamiento",
			},
			models.FactorPossibleAutomation: {
				"Analizar patrones de comportamiento",
			},
			models.FactorLocationInconsistency: {
				"Verificar la ubicación por un método alternativo",
			},
			models.FactorProxy: {
				"Verificar identidad del usuario",
				"Revisar la reputación de la IP",
			},
			models.FactorHosting: {
				"Revisar la reputación de la IP",
				"Bloquear rangos de datacenter conocidos",
			},
		},
	}
}

// WithDefaultWording fills any missing wording table from DefaultWording.
func (p Policy) WithDefaultWording() Policy {
	def := DefaultWording()
	if len(p.Risk.Wording.Factors) == 0 {
		p.Risk.Wording.Factors = def.Factors
	}
	if len(p.Risk.Wording.LevelRecommendations) == 0 {
		p.Risk.Wording.LevelRecommendations = def.LevelRecommendations
	}
	if len(p.Risk.Wording.FactorRecommendations) == 0 {
		p.Risk.Wording.FactorRecommendations = def.FactorRecommendations
	}
	return p
}

// Clone returns a deep copy of the wording tables.
func (w Wording) Clone() Wording {
	out := Wording{
		Factors:               make(map[models.FactorKind]string, len(w.Factors)),
		LevelRecommendations:  make(map[models.RiskLevel][]string, len(w.LevelRecommendations)),
		FactorRecommendations: make(map[models.FactorKind][]string, len(w.FactorRecommendations)),
	}
	for k, v := range w.Factors {
		out.Factors[k] = v
	}
	for k, v := range w.LevelRecommendations {
		out.LevelRecommendations[k] = append([]string(nil), v...)
	}
	for k, v := range w.FactorRecommendations {
		out.FactorRecommendations[k] = append([]string(nil), v...)
	}
	return out
}

// Validate checks that thresholds are ordered and weights are usable.
func (p Policy) Validate() error {
	var errs []error

	g := p.Geo
	if g.VeryHighMaxM <= 0 || g.VeryHighMaxM > g.HighMaxM || g.HighMaxM > g.MediumMaxM {
		errs = append(errs, fmt.Errorf("geo precision tiers must be positive and ascending (got %g/%g/%g)",
			g.VeryHighMaxM, g.HighMaxM, g.MediumMaxM))
	}
	if g.ExcellentKm <= 0 || g.ExcellentKm > g.GoodKm || g.GoodKm > g.AcceptableKm {
		errs = append(errs, fmt.Errorf("geo distance buckets must be positive and ascending (got %g/%g/%g)",
			g.ExcellentKm, g.GoodKm, g.AcceptableKm))
	}
	if g.EarthRadiusKm <= 0 {
		errs = append(errs, errors.New("geo earth_radius_km must be positive"))
	}

	b := p.Behavior
	if b.ZeroDenominatorBias <= 0 {
		errs = append(errs, errors.New("behavior zero_denominator_bias must be positive"))
	}
	if b.RoboticMouseLinearRatio < 0 || b.RoboticMouseLinearRatio > 1 {
		errs = append(errs, fmt.Errorf("behavior robotic_mouse_linear_ratio must be within [0,1] (got %g)",
			b.RoboticMouseLinearRatio))
	}
	if b.RoboticMouseWeight < 0 || b.RoboticTypingWeight < 0 || b.SuspiciousTimingWeight < 0 {
		errs = append(errs, errors.New("behavior weights must not be negative"))
	}
	switch b.TimingCheck {
	case TimingCheckNone, TimingCheckCadence:
	default:
		errs = append(errs, fmt.Errorf("behavior timing_check must be %q or %q (got %q)",
			TimingCheckNone, TimingCheckCadence, b.TimingCheck))
	}

	r := p.Risk
	if r.PossibleAutomationAbove >= r.HighAutomationAbove {
		errs = append(errs, fmt.Errorf("risk possible_automation_above (%d) must be below high_automation_above (%d)",
			r.PossibleAutomationAbove, r.HighAutomationAbove))
	}
	if r.MediumLevelAbove >= r.HighLevelAbove {
		errs = append(errs, fmt.Errorf("risk medium_level_above (%d) must be below high_level_above (%d)",
			r.MediumLevelAbove, r.HighLevelAbove))
	}

	return errors.Join(errs...)
}
