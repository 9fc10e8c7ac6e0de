// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package reputation decides whether a client IP belongs to a proxy or a
// hosting network.
//
// Three sources are consulted, each optional: a MaxMind Anonymous IP
// database, a MaxMind ASN database matched against hosting organization
// keywords, and a list of datacenter CIDR ranges. Private, loopback and
// link-local addresses are never flagged. Results can be cached per
// address with WithCache.
package reputation

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/tomtom215/geoscope/internal/cache"
	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
)

// Lookup sources, used as metric labels and in Result.Sources.
const (
	SourceAnonymousIP = "anonymous_ip"
	SourceASN         = "asn"
	SourceCIDR        = "cidr"
)

// ErrInvalidIP is returned for addresses that do not parse.
var ErrInvalidIP = errors.New("invalid IP address")

// AnonymousIPReader is the subset of *geoip2.Reader used for proxy detection.
type AnonymousIPReader interface {
	AnonymousIP(ip net.IP) (*geoip2.AnonymousIP, error)
}

// ASNReader is the subset of *geoip2.Reader used for hosting detection.
type ASNReader interface {
	ASN(ip net.IP) (*geoip2.ASN, error)
}

// Result is the outcome of a lookup. Sources lists which sources flagged
// the address.
type Result struct {
	IsProxy   bool     `json:"is_proxy"`
	IsHosting bool     `json:"is_hosting"`
	Sources   []string `json:"sources,omitempty"`
	ASN       uint     `json:"asn,omitempty"`
	ASNOrg    string   `json:"asn_org,omitempty"`
}

// Flags converts r into capture network flags.
func (r Result) Flags() models.NetworkFlags {
	return models.NetworkFlags{IsProxy: r.IsProxy, IsHosting: r.IsHosting}
}

// Merge ORs looked-up flags into flags supplied by the collector. A lookup
// can raise a flag but never clear one.
func Merge(supplied models.NetworkFlags, r Result) models.NetworkFlags {
	return models.NetworkFlags{
		IsProxy:   supplied.IsProxy || r.IsProxy,
		IsHosting: supplied.IsHosting || r.IsHosting,
	}
}

// Checker looks up IP reputation.
type Checker struct {
	anon     AnonymousIPReader
	asn      ASNReader
	nets     []netip.Prefix
	keywords []string
	matcher  *cache.KeywordMatcher
	results  *cache.LRU[Result]
	closers  []func() error
}

// Option configures a Checker.
type Option func(*Checker)

// WithAnonymousIP sets the Anonymous IP source.
func WithAnonymousIP(r AnonymousIPReader) Option {
	return func(c *Checker) { c.anon = r }
}

// WithASN sets the ASN source.
func WithASN(r ASNReader) Option {
	return func(c *Checker) { c.asn = r }
}

// WithDatacenterCIDRs adds ranges to the datacenter list.
func WithDatacenterCIDRs(cidrs []string) Option {
	return func(c *Checker) {
		for _, cidr := range cidrs {
			p, err := netip.ParsePrefix(strings.TrimSpace(cidr))
			if err != nil {
				logging.Warn().Str("cidr", cidr).Err(err).Msg("Skipping invalid datacenter CIDR")
				continue
			}
			c.nets = append(c.nets, p.Masked())
		}
	}
}

// WithHostingKeywords adds ASN organization keywords.
func WithHostingKeywords(keywords []string) Option {
	return func(c *Checker) {
		c.keywords = append(c.keywords, keywords...)
	}
}

// WithCache keeps up to size lookup results for ttl. Repeat visits from
// the same address then skip the database reads.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Checker) {
		if size > 0 {
			c.results = cache.NewLRU[Result](size, ttl)
		}
	}
}

// NewChecker returns a checker with the built-in datacenter ranges and
// hosting keywords, plus whatever opts add.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{}
	WithDatacenterCIDRs(defaultDatacenterCIDRs)(c)
	WithHostingKeywords(defaultHostingKeywords)(c)
	for _, opt := range opts {
		opt(c)
	}
	c.matcher = cache.NewKeywordMatcher(c.keywords)
	return c
}

// Open builds a checker from configuration, opening the configured MaxMind
// databases. The caller must Close the checker.
func Open(rc config.ReputationConfig, gc config.GeoIPConfig) (*Checker, error) {
	opts := []Option{
		WithDatacenterCIDRs(rc.DatacenterCIDRs),
		WithHostingKeywords(rc.HostingKeywords),
		WithCache(rc.CacheSize, rc.CacheTTL),
	}
	var closers []func() error

	if gc.AnonymousIPDB != "" {
		db, err := geoip2.Open(gc.AnonymousIPDB)
		if err != nil {
			return nil, fmt.Errorf("open anonymous ip database: %w", err)
		}
		opts = append(opts, WithAnonymousIP(db))
		closers = append(closers, db.Close)
	}
	if gc.ASNDB != "" {
		db, err := geoip2.Open(gc.ASNDB)
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return nil, fmt.Errorf("open asn database: %w", err)
		}
		opts = append(opts, WithASN(db))
		closers = append(closers, db.Close)
	}

	c := NewChecker(opts...)
	c.closers = closers
	return c, nil
}

// Close releases any databases opened by Open.
func (c *Checker) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Lookup checks ip against every configured source. Database errors are
// logged and counted but do not fail the lookup. With a cache configured,
// results for public addresses are served from it until they expire.
func (c *Checker) Lookup(ip string) (Result, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	addr = addr.Unmap()

	if !isPublic(addr) {
		return Result{}, nil
	}

	if c.results == nil {
		return c.lookup(addr), nil
	}
	key := addr.String()
	if cached, ok := c.results.Get(key); ok {
		metrics.RecordReputationCache(true)
		cached.Sources = slices.Clone(cached.Sources)
		return cached, nil
	}
	metrics.RecordReputationCache(false)

	r := c.lookup(addr)
	stored := r
	stored.Sources = slices.Clone(r.Sources)
	c.results.Add(key, stored)
	return r, nil
}

func (c *Checker) lookup(addr netip.Addr) Result {
	var r Result
	netIP := net.IP(addr.AsSlice())

	if c.anon != nil {
		rec, err := c.anon.AnonymousIP(netIP)
		flagged := false
		if err != nil {
			logging.Debug().Err(err).Msg("Anonymous IP lookup failed")
		} else {
			if rec.IsPublicProxy || rec.IsAnonymousVPN || rec.IsTorExitNode || rec.IsResidentialProxy {
				r.IsProxy = true
				flagged = true
			}
			if rec.IsHostingProvider {
				r.IsHosting = true
				flagged = true
			}
			if flagged {
				r.Sources = append(r.Sources, SourceAnonymousIP)
			}
		}
		metrics.RecordReputationLookup(SourceAnonymousIP, flagged, err)
	}

	if c.asn != nil {
		rec, err := c.asn.ASN(netIP)
		flagged := false
		if err != nil {
			logging.Debug().Err(err).Msg("ASN lookup failed")
		} else {
			r.ASN = rec.AutonomousSystemNumber
			r.ASNOrg = rec.AutonomousSystemOrganization
			if c.hostingOrg(rec.AutonomousSystemOrganization) {
				r.IsHosting = true
				flagged = true
				r.Sources = append(r.Sources, SourceASN)
			}
		}
		metrics.RecordReputationLookup(SourceASN, flagged, err)
	}

	inRange := c.inDatacenterRange(addr)
	if inRange {
		r.IsHosting = true
		r.Sources = append(r.Sources, SourceCIDR)
	}
	metrics.RecordReputationLookup(SourceCIDR, inRange, nil)

	return r
}

func (c *Checker) hostingOrg(org string) bool {
	return org != "" && c.matcher.Contains(org)
}

func (c *Checker) inDatacenterRange(addr netip.Addr) bool {
	for _, p := range c.nets {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func isPublic(addr netip.Addr) bool {
	return addr.IsValid() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified()
}
