// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package ingest turns collector submissions into validated captures.
//
// Decoding normalizes raw provider responses, adds a local City database
// result and network reputation flags when those sources are configured,
// and validates the result at the boundary. Coordinates are never rejected
// here; the fusion engine classifies them.
package ingest

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geoscope/internal/geo"
	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
	"github.com/tomtom215/geoscope/internal/reputation"
	"github.com/tomtom215/geoscope/internal/validation"
)

// maxIPResults matches the validation limit on RawCapture.IPResults.
// Results past it are dropped.
const maxIPResults = 16

// overflowLabel is the IPResultsDropped label for results cut by maxIPResults.
const overflowLabel = "overflow"

var errMissingServiceName = errors.New("missing service_name")

// ErrInvalidCapture wraps every decode failure. Validation failures also
// carry a *validation.RequestValidationError.
var ErrInvalidCapture = errors.New("invalid capture")

// ReputationChecker looks up network reputation for an address.
type ReputationChecker interface {
	Lookup(ip string) (reputation.Result, error)
}

// Decoder converts payloads into captures.
type Decoder struct {
	city       CityReader
	reputation ReputationChecker
	now        func() time.Time
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithCityReader enables local geolocation of the client address.
func WithCityReader(r CityReader) Option {
	return func(d *Decoder) { d.city = r }
}

// WithReputation enables reputation lookups of the client address.
func WithReputation(c ReputationChecker) Option {
	return func(d *Decoder) { d.reputation = c }
}

// WithClock overrides the time source used for missing capture timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Decoder) { d.now = now }
}

// NewDecoder creates a decoder. With no options it only parses,
// normalizes and validates.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses data and returns a validated capture. clientIP is the
// address the submission came from, as seen by the server; it may be empty.
func (d *Decoder) Decode(data []byte, clientIP string) (*models.RawCapture, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.CapturesRejected.WithLabelValues("invalid_json").Inc()
		return nil, fmt.Errorf("%w: malformed JSON: %w", ErrInvalidCapture, err)
	}
	return d.Build(&p, clientIP)
}

// Build converts an already parsed payload.
func (d *Decoder) Build(p *Payload, clientIP string) (*models.RawCapture, error) {
	c := &models.RawCapture{
		SessionID:         p.SessionID,
		GPS:               p.GPS.Reading(),
		DeviceTimezone:    p.DeviceTimezone,
		MousePoints:       p.MousePoints,
		KeyEvents:         p.KeyEvents,
		ScrollPoints:      p.ScrollPoints,
		SessionDurationMS: p.SessionDurationMS,
		Network:           p.Network,
		UserAgent:         p.UserAgent,
		Campaign:          p.Campaign,
		ClientIP:          normalizeIP(clientIP),
	}
	if p.CapturedAt != nil && !p.CapturedAt.IsZero() {
		c.CapturedAt = p.CapturedAt.UTC()
	} else {
		c.CapturedAt = d.now().UTC()
	}

	c.IPResults = make([]models.IPGeoResult, 0, len(p.IPResults)+len(p.IPProviders))
	for _, raw := range p.IPResults {
		r, err := normalizeIPResult(raw)
		if err != nil {
			metrics.IPResultsDropped.WithLabelValues(geo.ProviderGeneric).Inc()
			logging.Debug().Err(err).Msg("Dropping IP result")
			continue
		}
		c.IPResults = append(c.IPResults, r)
	}
	for _, raw := range p.IPProviders {
		var pp ProviderPayload
		if err := json.Unmarshal(raw, &pp); err != nil {
			metrics.IPResultsDropped.WithLabelValues(geo.ProviderGeneric).Inc()
			logging.Debug().Err(err).Msg("Dropping malformed provider entry")
			continue
		}
		r, err := geo.NormalizeProvider(pp.Kind, pp.ServiceName, pp.Payload)
		if err != nil {
			metrics.IPResultsDropped.WithLabelValues(providerLabel(pp)).Inc()
			logging.Debug().Str("provider", providerLabel(pp)).Err(err).Msg("Dropping provider payload")
			continue
		}
		c.IPResults = append(c.IPResults, r)
	}
	if extra := len(c.IPResults) - maxIPResults; extra > 0 {
		metrics.IPResultsDropped.WithLabelValues(overflowLabel).Add(float64(extra))
		logging.Debug().Int("dropped", extra).Msg("Truncating IP results")
		c.IPResults = c.IPResults[:maxIPResults]
	}

	if c.ClientIP != "" {
		d.enrich(c)
	}

	if verr := validation.ValidateStruct(c); verr != nil {
		metrics.CapturesRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidCapture, verr)
	}
	return c, nil
}

// enrich adds the local City result and reputation flags for c.ClientIP.
func (d *Decoder) enrich(c *models.RawCapture) {
	addr, err := netip.ParseAddr(c.ClientIP)
	if err != nil {
		return
	}
	addr = addr.Unmap()

	if d.city != nil && addr.IsGlobalUnicast() && !addr.IsPrivate() && len(c.IPResults) < maxIPResults {
		rec, err := d.city.City(net.IP(addr.AsSlice()))
		if err != nil {
			logging.Debug().Str("ip", logging.MaskIP(c.ClientIP)).Err(err).Msg("Local city lookup failed")
		} else if r, ok := cityResult(rec); ok {
			c.IPResults = append(c.IPResults, r)
		}
	}

	if d.reputation != nil {
		res, err := d.reputation.Lookup(c.ClientIP)
		if err != nil {
			logging.Debug().Str("ip", logging.MaskIP(c.ClientIP)).Err(err).Msg("Reputation lookup failed")
			return
		}
		c.Network = reputation.Merge(c.Network, res)
	}
}

// normalizeIPResult decodes one already normalized IP result. Coordinates
// may be numbers or numeric strings.
func normalizeIPResult(raw json.RawMessage) (models.IPGeoResult, error) {
	var head struct {
		ServiceName string `json:"service_name"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return models.IPGeoResult{}, err
	}
	name := strings.TrimSpace(head.ServiceName)
	if name == "" {
		return models.IPGeoResult{}, errMissingServiceName
	}
	return geo.NormalizeProvider(geo.ProviderGeneric, name, raw)
}

// normalizeIP returns ip in canonical form, or "" when it does not parse.
// A host:port pair is accepted.
func normalizeIP(ip string) string {
	if ip == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

// providerLabel bounds the metric label to the known provider kinds.
func providerLabel(pp ProviderPayload) string {
	switch k := strings.ToLower(pp.Kind); k {
	case geo.ProviderIPAPI, geo.ProviderIPAPICo, geo.ProviderIPInfo, geo.ProviderIPWhois, geo.ProviderMaxMind:
		return k
	default:
		return geo.ProviderGeneric
	}
}
