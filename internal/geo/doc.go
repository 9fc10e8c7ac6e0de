// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

/*
Package geo fuses GPS, IP geolocation and timezone evidence into one location estimate.

Fuse never fails. Missing or malformed evidence turns into explicit markers
(GPSUnavailable, GPSInvalidCoordinates, TimezoneUnknown, PrecisionUnknown)
instead of errors, since denied browser permissions and partial provider
answers are the common case.

Fusion steps:

 1. GPS validation: latitude in [-90,90] and longitude in [-180,180]
 2. GPS precision tier from the accuracy radius (10/50/200 m by default)
 3. IP result sanitizing: entries without a service name are dropped, invalid
    coordinates are cleared, call order is preserved (first is primary)
 4. Haversine distance between the GPS fix and the first IP result with coordinates
 5. Timezone consistency between device and IP timezone names
 6. Estimated precision: GPS tier, else ip_only, else unknown
 7. Location consistency score (0-100) from the above

Provider payloads fetched upstream are turned into models.IPGeoResult with
NormalizeProvider, which understands ip-api.com, ipapi.co, ipinfo.io, ipwho.is,
MaxMind GeoIP2 JSON and a generic flat shape.
*/
package geo
