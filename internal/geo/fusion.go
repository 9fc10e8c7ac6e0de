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

// Input is the geolocation subset of a capture.
type Input struct {
	GPS            *models.GPSReading
	IPResults      []models.IPGeoResult
	DeviceTimezone *string
}

// InputFromCapture extracts the fusion input from a capture.
func InputFromCapture(c *models.RawCapture) Input {
	return Input{
		GPS:            c.GPS,
		IPResults:      c.IPResults,
		DeviceTimezone: c.DeviceTimezone,
	}
}

// Fuse cross-validates the available location evidence.
func Fuse(p policy.Geo, in Input) models.FusedLocation {
	loc := models.FusedLocation{
		MethodsUsed:         []models.LocationMethod{},
		GPSValidity:         ValidateGPS(in.GPS),
		IPCandidates:        SanitizeResults(in.IPResults),
		TimezoneConsistency: models.TimezoneUnknown,
		EstimatedPrecision:  models.PrecisionUnknown,
	}

	if loc.GPSValidity == models.GPSValid {
		tier := GPSPrecisionTier(p, in.GPS)
		gps := in.GPS.Clone()
		loc.GPSPrecisionTier = &tier
		loc.GPS = &gps
		loc.MethodsUsed = append(loc.MethodsUsed, models.MethodGPS)
	}

	if len(loc.IPCandidates) > 0 {
		loc.MethodsUsed = append(loc.MethodsUsed, models.MethodIPServices)
	}

	if loc.GPS != nil {
		if ip, ok := firstWithCoordinates(loc.IPCandidates); ok {
			lat, lon, _ := loc.GPS.Coordinates()
			km := haversineWithRadius(p.EarthRadiusKm, lat, lon, *ip.Latitude, *ip.Longitude)
			bucket := BucketFor(p, km)
			loc.GPSvsIPDistanceKm = &km
			loc.DistanceBucket = &bucket
		}
	}

	if tz, ok := checkTimezone(in.DeviceTimezone, loc.IPCandidates); ok {
		loc.TimezoneConsistency = tz
		loc.MethodsUsed = append(loc.MethodsUsed, models.MethodTimezone)
	}

	switch {
	case loc.GPSPrecisionTier != nil:
		loc.EstimatedPrecision = *loc.GPSPrecisionTier
	case len(loc.IPCandidates) > 0:
		loc.EstimatedPrecision = models.PrecisionIPOnly
	}

	loc.LocationConsistencyScore = ConsistencyScore(p, &loc)
	return loc
}

// SanitizeResults returns a fresh slice of usable IP results in call order.
// Entries without a service name are dropped. Coordinates that are incomplete
// or out of range are cleared while the rest of the entry is kept.
func SanitizeResults(results []models.IPGeoResult) []models.IPGeoResult {
	out := make([]models.IPGeoResult, 0, len(results))
	for _, r := range results {
		r.ServiceName = strings.TrimSpace(r.ServiceName)
		if r.ServiceName == "" {
			continue
		}
		r.Country = strings.TrimSpace(r.Country)
		r.Region = strings.TrimSpace(r.Region)
		r.City = strings.TrimSpace(r.City)
		r.ISP = strings.TrimSpace(r.ISP)

		if r.HasCoordinates() && ValidCoordinates(*r.Latitude, *r.Longitude) {
			lat, lon := *r.Latitude, *r.Longitude
			r.Latitude, r.Longitude = &lat, &lon
		} else {
			r.Latitude, r.Longitude = nil, nil
		}

		if r.Timezone != nil {
			tz := strings.TrimSpace(*r.Timezone)
			if tz == "" {
				r.Timezone = nil
			} else {
				r.Timezone = &tz
			}
		}
		out = append(out, r)
	}
	return out
}

func firstWithCoordinates(results []models.IPGeoResult) (models.IPGeoResult, bool) {
	for _, r := range results {
		if r.HasCoordinates() {
			return r, true
		}
	}
	return models.IPGeoResult{}, false
}

// checkTimezone compares the device timezone with the first IP timezone.
// ok is false when either side is missing.
func checkTimezone(device *string, results []models.IPGeoResult) (models.TimezoneConsistency, bool) {
	if device == nil || strings.TrimSpace(*device) == "" {
		return models.TimezoneUnknown, false
	}
	for _, r := range results {
		if r.Timezone == nil {
			continue
		}
		if strings.TrimSpace(*device) == *r.Timezone {
			return models.TimezoneConsistent, true
		}
		return models.TimezoneInconsistent, true
	}
	return models.TimezoneUnknown, false
}
