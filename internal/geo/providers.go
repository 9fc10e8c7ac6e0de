// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geoscope/internal/models"
)

// ErrProviderFailure is returned when a provider payload reports a failed lookup.
var ErrProviderFailure = errors.New("provider reported failure")

// Provider payload shapes understood by NormalizeProvider.
const (
	ProviderIPAPI   = "ip-api"
	ProviderIPAPICo = "ipapi.co"
	ProviderIPInfo  = "ipinfo"
	ProviderIPWhois = "ipwho.is"
	ProviderMaxMind = "maxmind"
	ProviderGeneric = "generic"
)

// NormalizeProvider converts one provider payload into an IPGeoResult.
//
// The shape is chosen by kind (one of the Provider constants; unknown kinds
// use the generic shape). serviceName is recorded as the result's service
// name. Missing fields stay empty and unparsable coordinates are left unset.
// An error means the whole entry should be dropped.
func NormalizeProvider(kind, serviceName string, raw []byte) (models.IPGeoResult, error) {
	if serviceName == "" {
		serviceName = kind
	}

	var (
		result models.IPGeoResult
		err    error
	)
	switch strings.ToLower(kind) {
	case ProviderIPAPI:
		result, err = normalizeIPAPI(raw)
	case ProviderIPAPICo:
		result, err = normalizeIPAPICo(raw)
	case ProviderIPInfo:
		result, err = normalizeIPInfo(raw)
	case ProviderIPWhois:
		result, err = normalizeIPWhois(raw)
	case ProviderMaxMind:
		result, err = normalizeMaxMind(raw)
	default:
		result, err = normalizeGeneric(raw)
	}
	if err != nil {
		return models.IPGeoResult{}, fmt.Errorf("normalize %s payload: %w", serviceName, err)
	}

	result.ServiceName = serviceName
	return result, nil
}

// FlexFloat accepts a JSON number or a numeric string. Anything else is
// treated as absent rather than failing the whole payload.
type FlexFloat struct {
	value *float64
}

// Value returns the parsed number, or nil when it was absent or not numeric.
func (f FlexFloat) Value() *float64 {
	return f.value
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.value = &v
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ========================================
// ip-api.com
// ========================================

type ipAPIResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Country     string    `json:"country"`
	CountryCode string    `json:"countryCode"`
	RegionName  string    `json:"regionName"`
	City        string    `json:"city"`
	Lat         FlexFloat `json:"lat"`
	Lon         FlexFloat `json:"lon"`
	Timezone    string    `json:"timezone"`
	ISP         string    `json:"isp"`
	Org         string    `json:"org"`
}

func normalizeIPAPI(raw []byte) (models.IPGeoResult, error) {
	var r ipAPIResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.IPGeoResult{}, err
	}
	if r.Status == "fail" {
		return models.IPGeoResult{}, fmt.Errorf("%w: %s", ErrProviderFailure, r.Message)
	}
	return models.IPGeoResult{
		Country:   firstNonEmpty(r.CountryCode, r.Country),
		Region:    r.RegionName,
		City:      r.City,
		Latitude:  r.Lat.value,
		Longitude: r.Lon.value,
		ISP:       firstNonEmpty(r.ISP, r.Org),
		Timezone:  optionalString(r.Timezone),
	}, nil
}

// ========================================
// ipapi.co
// ========================================

type ipAPICoResponse struct {
	Error       bool      `json:"error"`
	Reason      string    `json:"reason"`
	CountryCode string    `json:"country_code"`
	CountryName string    `json:"country_name"`
	Region      string    `json:"region"`
	City        string    `json:"city"`
	Latitude    FlexFloat `json:"latitude"`
	Longitude   FlexFloat `json:"longitude"`
	Timezone    string    `json:"timezone"`
	Org         string    `json:"org"`
}

func normalizeIPAPICo(raw []byte) (models.IPGeoResult, error) {
	var r ipAPICoResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.IPGeoResult{}, err
	}
	if r.Error {
		return models.IPGeoResult{}, fmt.Errorf("%w: %s", ErrProviderFailure, r.Reason)
	}
	return models.IPGeoResult{
		Country:   firstNonEmpty(r.CountryCode, r.CountryName),
		Region:    r.Region,
		City:      r.City,
		Latitude:  r.Latitude.value,
		Longitude: r.Longitude.value,
		ISP:       r.Org,
		Timezone:  optionalString(r.Timezone),
	}, nil
}

// ========================================
// ipinfo.io
// ========================================

type ipInfoResponse struct {
	Bogon    bool   `json:"bogon"`
	Country  string `json:"country"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Loc      string `json:"loc"` // "lat,lon"
	Org      string `json:"org"` // "AS123 Name"
	Timezone string `json:"timezone"`
}

func normalizeIPInfo(raw []byte) (models.IPGeoResult, error) {
	var r ipInfoResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.IPGeoResult{}, err
	}
	if r.Bogon {
		return models.IPGeoResult{}, fmt.Errorf("%w: bogon address", ErrProviderFailure)
	}
	result := models.IPGeoResult{
		Country:  r.Country,
		Region:   r.Region,
		City:     r.City,
		ISP:      stripASPrefix(r.Org),
		Timezone: optionalString(r.Timezone),
	}
	if lat, lon, ok := parseLoc(r.Loc); ok {
		result.Latitude, result.Longitude = &lat, &lon
	}
	return result, nil
}

func parseLoc(loc string) (lat, lon float64, ok bool) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func stripASPrefix(org string) string {
	if strings.HasPrefix(org, "AS") {
		if i := strings.IndexByte(org, ' '); i > 0 {
			return strings.TrimSpace(org[i+1:])
		}
	}
	return org
}

// ========================================
// ipwho.is
// ========================================

type ipWhoisResponse struct {
	Success     *bool     `json:"success"`
	Message     string    `json:"message"`
	Country     string    `json:"country"`
	CountryCode string    `json:"country_code"`
	Region      string    `json:"region"`
	City        string    `json:"city"`
	Latitude    FlexFloat `json:"latitude"`
	Longitude   FlexFloat `json:"longitude"`
	Connection  struct {
		ISP string `json:"isp"`
		Org string `json:"org"`
	} `json:"connection"`
	Timezone struct {
		ID string `json:"id"`
	} `json:"timezone"`
}

func normalizeIPWhois(raw []byte) (models.IPGeoResult, error) {
	var r ipWhoisResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.IPGeoResult{}, err
	}
	if r.Success != nil && !*r.Success {
		return models.IPGeoResult{}, fmt.Errorf("%w: %s", ErrProviderFailure, r.Message)
	}
	return models.IPGeoResult{
		Country:   firstNonEmpty(r.CountryCode, r.Country),
		Region:    r.Region,
		City:      r.City,
		Latitude:  r.Latitude.value,
		Longitude: r.Longitude.value,
		ISP:       firstNonEmpty(r.Connection.ISP, r.Connection.Org),
		Timezone:  optionalString(r.Timezone.ID),
	}, nil
}

// ========================================
// MaxMind GeoIP2 web service
// ========================================

type maxMindResponse struct {
	City struct {
		Names map[string]string `json:"names"`
	} `json:"city"`
	Country struct {
		ISOCode string            `json:"iso_code"`
		Names   map[string]string `json:"names"`
	} `json:"country"`
	Location struct {
		Latitude  FlexFloat `json:"latitude"`
		Longitude FlexFloat `json:"longitude"`
		TimeZone  string    `json:"time_zone"`
	} `json:"location"`
	Subdivisions []struct {
		ISOCode string            `json:"iso_code"`
		Names   map[string]string `json:"names"`
	} `json:"subdivisions"`
	Traits struct {
		ISP                          string `json:"isp"`
		AutonomousSystemOrganization string `json:"autonomous_system_organization"`
	} `json:"traits"`
}

func normalizeMaxMind(raw []byte) (models.IPGeoResult, error) {
	var r maxMindResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.IPGeoResult{}, err
	}
	result := models.IPGeoResult{
		Country:   firstNonEmpty(r.Country.ISOCode, r.Country.Names["en"]),
		City:      r.City.Names["en"],
		Latitude:  r.Location.Latitude.value,
		Longitude: r.Location.Longitude.value,
		ISP:       firstNonEmpty(r.Traits.ISP, r.Traits.AutonomousSystemOrganization),
		Timezone:  optionalString(r.Location.TimeZone),
	}
	if len(r.Subdivisions) > 0 {
		result.Region = firstNonEmpty(r.Subdivisions[0].Names["en"], r.Subdivisions[0].ISOCode)
	}
	return result, nil
}

// ========================================
// Generic flat shape
// ========================================

type genericResponse struct {
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	City      string    `json:"city"`
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
	Lat       FlexFloat `json:"lat"`
	Lon       FlexFloat `json:"lon"`
	ISP       string    `json:"isp"`
	Org       string    `json:"org"`
	Timezone  string    `json:"timezone"`
}

func normalizeGeneric(raw []byte) (models.IPGeoResult, error) {
	var r genericResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.IPGeoResult{}, err
	}
	result := models.IPGeoResult{
		Country:   r.Country,
		Region:    r.Region,
		City:      r.City,
		Latitude:  r.Latitude.value,
		Longitude: r.Longitude.value,
		ISP:       firstNonEmpty(r.ISP, r.Org),
		Timezone:  optionalString(r.Timezone),
	}
	if result.Latitude == nil {
		result.Latitude = r.Lat.value
	}
	if result.Longitude == nil {
		result.Longitude = r.Lon.value
	}
	return result, nil
}
