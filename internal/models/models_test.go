// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestIPGeoResultHasCoordinates(t *testing.T) {
	tests := []struct {
		name string
		r    IPGeoResult
		want bool
	}{
		{"both", IPGeoResult{Latitude: Float64Ptr(1), Longitude: Float64Ptr(2)}, true},
		{"zero values still count", IPGeoResult{Latitude: Float64Ptr(0), Longitude: Float64Ptr(0)}, true},
		{"latitude only", IPGeoResult{Latitude: Float64Ptr(1)}, false},
		{"neither", IPGeoResult{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.HasCoordinates(); got != tt.want {
				t.Errorf("HasCoordinates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFusedLocationHelpers(t *testing.T) {
	var empty FusedLocation
	if _, ok := empty.Primary(); ok {
		t.Error("Primary() on empty candidates should report false")
	}

	f := FusedLocation{
		MethodsUsed:  []LocationMethod{MethodGPS, MethodTimezone},
		IPCandidates: []IPGeoResult{{ServiceName: "first"}, {ServiceName: "second"}},
	}
	if p, ok := f.Primary(); !ok || p.ServiceName != "first" {
		t.Errorf("Primary() = %+v, %v", p, ok)
	}
	if !f.UsedMethod(MethodTimezone) || f.UsedMethod(MethodIPServices) {
		t.Errorf("UsedMethod() disagrees with MethodsUsed %v", f.MethodsUsed)
	}
}

func TestRiskVerdictHasFactor(t *testing.T) {
	v := RiskVerdict{RiskFactors: []Factor{{Kind: FactorProxy, Points: 30}}}
	if !v.HasFactor(FactorProxy) {
		t.Error("HasFactor(proxy) = false")
	}
	if v.HasFactor(FactorHosting) {
		t.Error("HasFactor(hosting) = true")
	}
}

func TestNewRiskReport(t *testing.T) {
	ts := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	a := &AnalysisResult{
		RiskVerdict: RiskVerdict{
			RiskScore: 55,
			RiskLevel: RiskMedium,
			RiskFactors: []Factor{
				{Kind: FactorProxy, Points: 30, Description: "Proxy detectado"},
				{Kind: FactorHosting, Points: 25, Description: "IP de hosting"},
			},
			Recommendations: []string{"Verificar identidad"},
		},
		AnalysisTimestamp: ts,
	}

	r := NewRiskReport("sess-1", a)
	if r.SessionID != "sess-1" || r.RiskScore != 55 || r.RiskLevel != RiskMedium {
		t.Errorf("NewRiskReport() = %+v", r)
	}
	if strings.Join(r.RiskFactors, "|") != "Proxy detectado|IP de hosting" {
		t.Errorf("RiskFactors = %v", r.RiskFactors)
	}
	if !r.AnalysisTimestamp.Equal(ts) {
		t.Errorf("AnalysisTimestamp = %v", r.AnalysisTimestamp)
	}

	r.Recommendations[0] = "changed"
	if a.RiskVerdict.Recommendations[0] != "Verificar identidad" {
		t.Error("report must not alias the verdict's recommendations")
	}
}

func TestNewRiskReportEmptyListsSerializeAsArrays(t *testing.T) {
	r := NewRiskReport("sess-2", &AnalysisResult{RiskVerdict: RiskVerdict{RiskLevel: RiskLow}})

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"risk_factors":[]`, `"recommendations":[]`, `"risk_level":"bajo"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
}

func TestCaptureStreams(t *testing.T) {
	d := int64(4200)
	c := RawCapture{
		MousePoints:       []MousePoint{{X: 1, Y: 1, T: 0}},
		KeyEvents:         []KeyEvent{{T: 10}, {T: 20}},
		SessionDurationMS: &d,
	}
	s := c.Streams()
	if len(s.MousePoints) != 1 || len(s.KeyEvents) != 2 || len(s.ScrollPoints) != 0 {
		t.Errorf("Streams() = %+v", s)
	}
	if s.SessionDurationMS == nil || *s.SessionDurationMS != 4200 {
		t.Errorf("SessionDurationMS = %v", s.SessionDurationMS)
	}
}
