// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package models

import "time"

// RawCapture is one visit as handed over by the ingestion collaborator.
//
// Everything except SessionID is optional. Optional scalars are pointers so that
// "not reported" stays distinguishable from a zero value, and every consumer must
// treat each field as independently absent.
type RawCapture struct {
	SessionID string `json:"session_id" validate:"required,max=128,session_id"`

	GPS            *GPSReading   `json:"gps,omitempty"`
	IPResults      []IPGeoResult `json:"ip_results,omitempty" validate:"max=16"`
	DeviceTimezone *string       `json:"device_timezone,omitempty" validate:"omitempty,max=64"`

	MousePoints  []MousePoint  `json:"mouse_points,omitempty" validate:"max=20000"`
	KeyEvents    []KeyEvent    `json:"key_events,omitempty" validate:"max=10000"`
	ScrollPoints []ScrollPoint `json:"scroll_points,omitempty" validate:"max=10000"`

	Network NetworkFlags `json:"network"`

	// SessionDurationMS is the time the visitor spent on the page, when the
	// collector measured it.
	SessionDurationMS *int64 `json:"session_duration_ms,omitempty" validate:"omitempty,gte=0"`

	ClientIP   string    `json:"client_ip,omitempty" validate:"omitempty,ip"`
	UserAgent  string    `json:"user_agent,omitempty" validate:"max=1024"`
	Campaign   string    `json:"campaign,omitempty" validate:"max=128"`
	CapturedAt time.Time `json:"captured_at"`
}

// GPSReading is a single device geolocation fix.
//
// Latitude, Longitude and AccuracyM are nil when the device did not report
// them or reported something that is not a number.
type GPSReading struct {
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	AccuracyM *float64  `json:"accuracy_m,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinates returns the reported position. ok is false unless both
// latitude and longitude are present.
func (g *GPSReading) Coordinates() (lat, lon float64, ok bool) {
	if g == nil || g.Latitude == nil || g.Longitude == nil {
		return 0, 0, false
	}
	return *g.Latitude, *g.Longitude, true
}

// Clone returns a copy that shares no pointers with g.
func (g GPSReading) Clone() GPSReading {
	g.Latitude = cloneFloat(g.Latitude)
	g.Longitude = cloneFloat(g.Longitude)
	g.AccuracyM = cloneFloat(g.AccuracyM)
	g.Altitude = cloneFloat(g.Altitude)
	g.Heading = cloneFloat(g.Heading)
	g.Speed = cloneFloat(g.Speed)
	return g
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IPGeoResult is the normalized answer of one IP geolocation service.
type IPGeoResult struct {
	ServiceName string   `json:"service_name"`
	Country     string   `json:"country"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ISP         string   `json:"isp"`
	Timezone    *string  `json:"timezone,omitempty"`
}

// HasCoordinates reports whether the result carries both latitude and longitude.
func (r IPGeoResult) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// MousePoint is a sampled cursor position. T is milliseconds since page load.
type MousePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T float64 `json:"t"`
}

// KeyEvent is a keystroke timestamp in milliseconds. Key identity is never captured.
type KeyEvent struct {
	T float64 `json:"t"`
}

// ScrollPoint is a sampled vertical scroll offset.
type ScrollPoint struct {
	Y float64 `json:"y"`
	T float64 `json:"t"`
}

// NetworkFlags carries network reputation for the visitor's IP.
type NetworkFlags struct {
	IsProxy   bool `json:"is_proxy"`
	IsHosting bool `json:"is_hosting"`
}

// BehaviorStreams is the behavioral subset of a capture.
type BehaviorStreams struct {
	MousePoints       []MousePoint
	KeyEvents         []KeyEvent
	ScrollPoints      []ScrollPoint
	SessionDurationMS *int64
}

// Streams returns the behavioral subset of the capture.
func (c *RawCapture) Streams() BehaviorStreams {
	return BehaviorStreams{
		MousePoints:       c.MousePoints,
		KeyEvents:         c.KeyEvents,
		ScrollPoints:      c.ScrollPoints,
		SessionDurationMS: c.SessionDurationMS,
	}
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
