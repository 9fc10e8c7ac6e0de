// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package store persists capture records keyed by session ID.
//
// Three backends are available: an in-memory map, an embedded BadgerDB and a
// shared Redis instance. Redis calls go through a circuit breaker so a
// struggling Redis fails fast instead of stalling capture ingestion.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for a session.
	ErrNotFound = errors.New("capture record not found")

	// ErrUnavailable is returned when the backend is refusing calls.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidRecord is returned for nil records or records without a session ID.
	ErrInvalidRecord = errors.New("invalid capture record")
)

// Store saves and loads capture records. Save replaces any existing record
// for the same session.
type Store interface {
	Save(ctx context.Context, rec *models.CaptureRecord) error
	Get(ctx context.Context, sessionID string) (*models.CaptureRecord, error)
	Close() error
}

// New builds the store selected by cfg.Backend, wrapped with metrics.
func New(cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.StoreBackendMemory, "":
		s = NewMemoryStore(cfg.TTL)
	case config.StoreBackendBadger:
		s, err = OpenBadgerStore(cfg.BadgerPath, cfg.TTL)
	case config.StoreBackendRedis:
		s, err = NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = config.StoreBackendMemory
	}
	return Instrument(backend, s), nil
}

func checkRecord(rec *models.CaptureRecord) error {
	if rec == nil || rec.Capture.SessionID == "" {
		return ErrInvalidRecord
	}
	return nil
}

// instrumented records duration and failures of every call.
type instrumented struct {
	backend string
	next    Store
}

// Instrument wraps s so each call is recorded under the backend label.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, next: s}
}

func (i *instrumented) Save(ctx context.Context, rec *models.CaptureRecord) error {
	start := time.Now()
	err := i.next.Save(ctx, rec)
	metrics.RecordStoreOperation(i.backend, "save", time.Since(start), err)
	return err
}

func (i *instrumented) Get(ctx context.Context, sessionID string) (*models.CaptureRecord, error) {
	start := time.Now()
	rec, err := i.next.Get(ctx, sessionID)
	// A miss is a normal answer, not a store failure.
	var recorded error
	if err != nil && !errors.Is(err, ErrNotFound) {
		recorded = err
	}
	metrics.RecordStoreOperation(i.backend, "get", time.Since(start), recorded)
	return rec, err
}

func (i *instrumented) Close() error {
	return i.next.Close()
}

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping reports the health of s. Stores without a health check are healthy.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (i *instrumented) Ping(ctx context.Context) error {
	return Ping(ctx, i.next)
}

// Maintainer is implemented by stores that need periodic housekeeping,
// such as dropping expired records or reclaiming disk space.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Maintain runs housekeeping on s if it supports it.
func Maintain(ctx context.Context, s Store) error {
	if m, ok := s.(Maintainer); ok {
		return m.Maintain(ctx)
	}
	return nil
}

func (i *instrumented) Maintain(ctx context.Context) error {
	start := time.Now()
	err := Maintain(ctx, i.next)
	metrics.RecordStoreOperation(i.backend, "maintain", time.Since(start), err)
	return err
}
