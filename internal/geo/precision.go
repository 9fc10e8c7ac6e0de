// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package geo

import (
	"math"

	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/policy"
)

// ValidCoordinates reports whether lat/lon are finite and inside the WGS84 ranges.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateGPS classifies a GPS reading. A nil reading is unavailable and a
// reading without both coordinates is invalid.
func ValidateGPS(gps *models.GPSReading) models.GPSValidity {
	if gps == nil {
		return models.GPSUnavailable
	}
	lat, lon, ok := gps.Coordinates()
	if !ok || !ValidCoordinates(lat, lon) {
		return models.GPSInvalidCoordinates
	}
	return models.GPSValid
}

// PrecisionTier maps a GPS accuracy radius in meters to a precision tier.
// Unusable radii (negative, NaN) are treated as the lowest tier.
func PrecisionTier(p policy.Geo, accuracyM float64) models.Precision {
	switch {
	case math.IsNaN(accuracyM) || accuracyM < 0:
		return models.PrecisionLow
	case accuracyM <= p.VeryHighMaxM:
		return models.PrecisionVeryHigh
	case accuracyM <= p.HighMaxM:
		return models.PrecisionHigh
	case accuracyM <= p.MediumMaxM:
		return models.PrecisionMedium
	default:
		return models.PrecisionLow
	}
}

// GPSPrecisionTier is PrecisionTier for a reading whose accuracy may be
// missing. A missing radius is the lowest tier.
func GPSPrecisionTier(p policy.Geo, gps *models.GPSReading) models.Precision {
	if gps == nil || gps.AccuracyM == nil {
		return models.PrecisionLow
	}
	return PrecisionTier(p, *gps.AccuracyM)
}
