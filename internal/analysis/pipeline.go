// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package analysis composes fusion, behavior analysis and risk
// classification, and serves stored results.
package analysis

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/geoscope/internal/behavior"
	"github.com/tomtom215/geoscope/internal/geo"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
	"github.com/tomtom215/geoscope/internal/risk"
)

// ErrNilCapture is returned when Run is given no capture.
var ErrNilCapture = errors.New("nil capture")

// Pipeline runs the three analysis stages over one capture. It holds no
// per-capture state and is safe for concurrent use.
type Pipeline struct {
	geo        policy.Geo
	analyzer   *behavior.Analyzer
	classifier *risk.Classifier
	now        func() time.Time
}

// NewPipeline builds a pipeline for p. Later changes to p do not affect it.
func NewPipeline(p policy.Policy) *Pipeline {
	return &Pipeline{
		geo:        p.Geo,
		analyzer:   behavior.NewAnalyzer(p.Behavior, nil),
		classifier: risk.NewClassifier(p.Risk),
		now:        time.Now,
	}
}

// Run analyzes c. Fusion and behavior analysis are independent and run
// concurrently; classification waits for both.
func (p *Pipeline) Run(c *models.RawCapture) (*models.AnalysisResult, error) {
	if c == nil {
		metrics.AnalysisErrors.Inc()
		return nil, ErrNilCapture
	}
	start := time.Now()

	var (
		wg       sync.WaitGroup
		location models.FusedLocation
		profile  models.BehaviorProfile
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		location = geo.Fuse(p.geo, geo.InputFromCapture(c))
	}()
	go func() {
		defer wg.Done()
		profile = p.analyzer.Analyze(c.Streams())
	}()
	wg.Wait()

	verdict, err := p.classifier.Classify(risk.Input{
		Location: &location,
		Behavior: &profile,
		Network:  c.Network,
	})
	if err != nil {
		metrics.AnalysisErrors.Inc()
		return nil, fmt.Errorf("classify session: %w", err)
	}

	result := &models.AnalysisResult{
		FusedLocation:     location,
		BehaviorProfile:   profile,
		RiskVerdict:       verdict,
		AnalysisTimestamp: p.now().UTC(),
	}
	metrics.RecordAnalysis(time.Since(start), result)
	return result, nil
}
