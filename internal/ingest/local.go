// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package ingest

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/tomtom215/geoscope/internal/models"
)

// LocalServiceName labels results produced from the local City database.
const LocalServiceName = "maxmind-local"

// CityReader is the subset of *geoip2.Reader used for local geolocation.
type CityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// OpenCityDB opens a GeoLite2/GeoIP2 City database.
func OpenCityDB(path string) (*geoip2.Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open city database: %w", err)
	}
	return db, nil
}

// cityResult converts a City record. ok is false when the record carries
// neither a country nor coordinates.
func cityResult(rec *geoip2.City) (models.IPGeoResult, bool) {
	if rec == nil {
		return models.IPGeoResult{}, false
	}

	r := models.IPGeoResult{
		ServiceName: LocalServiceName,
		Country:     rec.Country.IsoCode,
		City:        rec.City.Names["en"],
	}
	if len(rec.Subdivisions) > 0 {
		r.Region = rec.Subdivisions[0].Names["en"]
	}
	// The reader reports 0,0 when the database has no location.
	if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
		r.Latitude = models.Float64Ptr(rec.Location.Latitude)
		r.Longitude = models.Float64Ptr(rec.Location.Longitude)
	}
	if rec.Location.TimeZone != "" {
		r.Timezone = models.StringPtr(rec.Location.TimeZone)
	}

	if r.Country == "" && r.Latitude == nil {
		return models.IPGeoResult{}, false
	}
	return r, true
}
