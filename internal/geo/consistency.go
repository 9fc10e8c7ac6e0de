// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package geo

import (
	"strings"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// ConsistencyScore rates how well the location signals agree, 0-100.
// A location with nothing to contradict it scores 100.
func ConsistencyScore(p policy.Geo, loc *models.FusedLocation) int {
	score := 100

	if loc.GPSValidity == models.GPSInvalidCoordinates {
		score -= p.InvalidGPSPenalty
	}

	if loc.DistanceBucket != nil {
		switch *loc.DistanceBucket {
		case models.DistanceAcceptable:
			score -= p.AcceptableDistancePenalty
		case models.DistanceLargeDiscrepancy:
			score -= p.LargeDistancePenalty
		}
	}

	if loc.TimezoneConsistency == models.TimezoneInconsistent {
		score -= p.TimezoneMismatchPenalty
	}

	if countriesDisagree(loc.IPCandidates) {
		score -= p.CountryMismatchPenalty
	}

	return clamp(score, 0, 100)
}

func countriesDisagree(results []models.IPGeoResult) bool {
	first := ""
	for _, r := range results {
		if r.Country == "" {
			continue
		}
		if first == "" {
			first = r.Country
			continue
		}
		if !strings.EqualFold(first, r.Country) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
