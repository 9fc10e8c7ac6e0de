// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package models

// LocationMethod identifies a signal that contributed to a fused location.
type LocationMethod string

const (
	MethodGPS        LocationMethod = "gps"
	MethodIPServices LocationMethod = "ip_services"
	MethodTimezone   LocationMethod = "timezone"
)

// GPSValidity is the outcome of validating a GPS fix.
type GPSValidity string

const (
	GPSValid              GPSValidity = "valid"
	GPSInvalidCoordinates GPSValidity = "invalid_coordinates"
	GPSUnavailable        GPSValidity = "unavailable"
)

// Precision is a confidence bucket for a location estimate.
// GPS tiers are very_high through low; ip_only and unknown only appear
// as an estimated precision.
type Precision string

const (
	PrecisionVeryHigh Precision = "very_high"
	PrecisionHigh     Precision = "high"
	PrecisionMedium   Precision = "medium"
	PrecisionLow      Precision = "low"
	PrecisionIPOnly   Precision = "ip_only"
	PrecisionUnknown  Precision = "unknown"
)

// TimezoneConsistency compares the device timezone with the IP timezone.
type TimezoneConsistency string

const (
	TimezoneConsistent   TimezoneConsistency = "consistent"
	TimezoneInconsistent TimezoneConsistency = "inconsistent"
	TimezoneUnknown      TimezoneConsistency = "unknown"
)

// DistanceBucket is the display classification of the GPS to IP distance.
type DistanceBucket string

const (
	DistanceExcellent        DistanceBucket = "excellent"
	DistanceGood             DistanceBucket = "good"
	DistanceAcceptable       DistanceBucket = "acceptable"
	DistanceLargeDiscrepancy DistanceBucket = "large_discrepancy"
)

// FusedLocation is the cross-validated location estimate for one capture.
type FusedLocation struct {
	MethodsUsed         []LocationMethod    `json:"methods_used"`
	GPSValidity         GPSValidity         `json:"gps_validity"`
	GPSPrecisionTier    *Precision          `json:"gps_precision_tier,omitempty"`
	GPS                 *GPSReading         `json:"gps,omitempty"`
	IPCandidates        []IPGeoResult       `json:"ip_candidates"`
	TimezoneConsistency TimezoneConsistency `json:"timezone_consistency"`
	GPSvsIPDistanceKm   *float64            `json:"gps_vs_ip_distance_km,omitempty"`
	DistanceBucket      *DistanceBucket     `json:"distance_bucket,omitempty"`
	EstimatedPrecision  Precision           `json:"estimated_precision"`

	// LocationConsistencyScore is 0-100, lower meaning the signals disagree more.
	LocationConsistencyScore int `json:"location_consistency_score"`
}

// Primary returns the primary IP candidate, if any.
func (f *FusedLocation) Primary() (IPGeoResult, bool) {
	if len(f.IPCandidates) == 0 {
		return IPGeoResult{}, false
	}
	return f.IPCandidates[0], true
}

// UsedMethod reports whether m contributed to the estimate.
func (f *FusedLocation) UsedMethod(m LocationMethod) bool {
	for _, used := range f.MethodsUsed {
		if used == m {
			return true
		}
	}
	return false
}
