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

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two points
// on a sphere of the mean Earth radius.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineWithRadius(EarthRadiusKm, lat1, lon1, lat2, lon2)
}

func haversineWithRadius(radiusKm, lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a slightly above 1 for antipodal points.
	if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radiusKm * c
}

// BucketFor classifies a GPS to IP distance for display.
func BucketFor(p policy.Geo, km float64) models.DistanceBucket {
	switch {
	case km < p.ExcellentKm:
		return models.DistanceExcellent
	case km < p.GoodKm:
		return models.DistanceGood
	case km < p.AcceptableKm:
		return models.DistanceAcceptable
	default:
		return models.DistanceLargeDiscrepancy
	}
}
