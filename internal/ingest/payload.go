// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geoscope/internal/geo"
	"github.com/tomtom215/geoscope/internal/models"
)

// Payload is the body a collector posts for one visitor session.
//
// IP geolocation may arrive already normalized (IPResults) or as the raw
// responses of the lookup services (IPProviders), or both. Raw responses are
// normalized and appended after the normalized entries, keeping their order.
// Both lists are decoded entry by entry so one malformed entry is dropped on
// its own.
type Payload struct {
	SessionID string `json:"session_id"`

	GPS            *GPSPayload       `json:"gps,omitempty"`
	IPResults      []json.RawMessage `json:"ip_results,omitempty"`
	IPProviders    []json.RawMessage `json:"ip_providers,omitempty"`
	DeviceTimezone *string           `json:"device_timezone,omitempty"`

	MousePoints       []models.MousePoint  `json:"mouse_points,omitempty"`
	KeyEvents         []models.KeyEvent    `json:"key_events,omitempty"`
	ScrollPoints      []models.ScrollPoint `json:"scroll_points,omitempty"`
	SessionDurationMS *int64               `json:"session_duration_ms,omitempty"`

	Network models.NetworkFlags `json:"network"`

	UserAgent  string     `json:"user_agent,omitempty"`
	Campaign   string     `json:"campaign,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// ProviderPayload is one raw IP geolocation response.
type ProviderPayload struct {
	// Kind selects the response shape: ip-api, ipapi.co, ipinfo, ipwho.is,
	// maxmind or generic.
	Kind string `json:"kind"`

	// ServiceName labels the result. Defaults to Kind.
	ServiceName string `json:"service_name,omitempty"`

	Payload json.RawMessage `json:"payload"`
}

// GPSPayload is the device fix as sent by the collector. Numbers may be
// sent as JSON numbers or numeric strings; anything else is left unset.
type GPSPayload struct {
	Latitude  geo.FlexFloat `json:"latitude"`
	Longitude geo.FlexFloat `json:"longitude"`
	AccuracyM geo.FlexFloat `json:"accuracy_m"`
	Altitude  geo.FlexFloat `json:"altitude"`
	Heading   geo.FlexFloat `json:"heading"`
	Speed     geo.FlexFloat `json:"speed"`
	Timestamp flexTime      `json:"timestamp"`
}

// UnmarshalJSON keeps a gps value that is not an object as a fix without
// coordinates.
func (g *GPSPayload) UnmarshalJSON(data []byte) error {
	type plain GPSPayload
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		*g = GPSPayload{}
		return nil
	}
	*g = GPSPayload(v)
	return nil
}

// Reading converts the payload into a GPS reading.
func (g *GPSPayload) Reading() *models.GPSReading {
	if g == nil {
		return nil
	}
	return &models.GPSReading{
		Latitude:  g.Latitude.Value(),
		Longitude: g.Longitude.Value(),
		AccuracyM: g.AccuracyM.Value(),
		Altitude:  g.Altitude.Value(),
		Heading:   g.Heading.Value(),
		Speed:     g.Speed.Value(),
		Timestamp: g.Timestamp.value,
	}
}

// flexTime accepts an RFC 3339 string or Unix epoch milliseconds, as a
// number or a numeric string. Anything else is the zero time.
type flexTime struct {
	value time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		f.value = t.UTC()
		return nil
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		f.value = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}
