// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package risk combines location, behavior and network reputation into a
// bounded risk verdict.
//
// Rules are additive and independent. Every rule that applies fires, and the
// total is clamped to [0,100] before the level is chosen:
//
//	automation_score > 70            +40  high_automation
//	40 < automation_score <= 70      +20  possible_automation
//	location_consistency_score < 70  +25  location_inconsistency
//	is_proxy                         +30  proxy
//	is_hosting                       +35  hosting
//
// Levels: score > 70 is alto, score > 40 is medio, anything else is bajo.
// The numbers above are the defaults from policy.Default().
package risk

import (
	"errors"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// ErrIncompleteInput is returned when Classify is called before fusion and
// behavior analysis have produced their results.
var ErrIncompleteInput = errors.New("risk: classification requires fused location and behavior profile")

// Input is everything the classifier reads.
type Input struct {
	Location *models.FusedLocation
	Behavior *models.BehaviorProfile
	Network  models.NetworkFlags
}

// Classifier scores inputs under a fixed policy.
type Classifier struct {
	cfg policy.Risk
}

// NewClassifier creates a classifier. The policy's wording tables are copied.
func NewClassifier(cfg policy.Risk) *Classifier {
	cfg.Wording = cfg.Wording.Clone()
	return &Classifier{cfg: cfg}
}

// Classify produces the verdict for one capture.
func (c *Classifier) Classify(in Input) (models.RiskVerdict, error) {
	if in.Location == nil || in.Behavior == nil {
		return models.RiskVerdict{}, ErrIncompleteInput
	}

	factors := c.factors(in)

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	score = clampScore(score)
	level := c.level(score)

	return models.RiskVerdict{
		RiskScore:       score,
		RiskLevel:       level,
		RiskFactors:     factors,
		Recommendations: c.recommendations(level, factors),
	}, nil
}

func (c *Classifier) factors(in Input) []models.Factor {
	factors := make([]models.Factor, 0, 4)
	add := func(kind models.FactorKind, points int) {
		factors = append(factors, models.Factor{
			Kind:        kind,
			Points:      points,
			Description: c.describe(kind),
		})
	}

	automation := in.Behavior.AutomationScore
	switch {
	case automation > c.cfg.HighAutomationAbove:
		add(models.FactorHighAutomation, c.cfg.HighAutomationPoints)
	case automation > c.cfg.PossibleAutomationAbove:
		add(models.FactorPossibleAutomation, c.cfg.PossibleAutomationPoints)
	}

	if in.Location.LocationConsistencyScore < c.cfg.LocationConsistencyBelow {
		add(models.FactorLocationInconsistency, c.cfg.LocationInconsistencyPoints)
	}
	if in.Network.IsProxy {
		add(models.FactorProxy, c.cfg.ProxyPoints)
	}
	if in.Network.IsHosting {
		add(models.FactorHosting, c.cfg.HostingPoints)
	}

	return factors
}

func (c *Classifier) level(score int) models.RiskLevel {
	switch {
	case score > c.cfg.HighLevelAbove:
		return models.RiskHigh
	case score > c.cfg.MediumLevelAbove:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func (c *Classifier) describe(kind models.FactorKind) string {
	if text, ok := c.cfg.Wording.Factors[kind]; ok {
		return text
	}
	return string(kind)
}

// recommendations lists the level's base set followed by each factor's
// additions, keeping the first occurrence of any repeated entry.
func (c *Classifier) recommendations(level models.RiskLevel, factors []models.Factor) []string {
	out := make([]string, 0, 8)
	seen := make(map[string]struct{})
	push := func(items []string) {
		for _, item := range items {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}

	push(c.cfg.Wording.LevelRecommendations[level])
	for _, f := range factors {
		push(c.cfg.Wording.FactorRecommendations[f.Kind])
	}
	return out
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
