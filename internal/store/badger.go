// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/geoscope/internal/models"
)

// Key prefix for BadgerDB storage
const captureKeyPrefix = "capture:"

const gcDiscardRatio = 0.5

// BadgerStore implements Store using BadgerDB for durable storage.
type BadgerStore struct {
	db    *badger.DB
	ttl   time.Duration
	owned bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. The returned store
// owns the database and closes it on Close.
func OpenBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}
	return &BadgerStore{db: db, ttl: ttl, owned: true}, nil
}

// NewBadgerStore wraps an already open database. Close leaves db open.
func NewBadgerStore(db *badger.DB, ttl time.Duration) *BadgerStore {
	return &BadgerStore{db: db, ttl: ttl}
}

// Save stores rec, replacing any earlier record for the session.
func (s *BadgerStore) Save(ctx context.Context, rec *models.CaptureRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal capture record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(captureKeyPrefix+rec.Capture.SessionID), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set capture record: %w", err)
		}
		return nil
	})
}

// Get returns the record for sessionID or ErrNotFound.
func (s *BadgerStore) Get(ctx context.Context, sessionID string) (*models.CaptureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec models.CaptureRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(captureKeyPrefix + sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get capture record: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Ping fails once the database has been closed.
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// Maintain runs value log GC until badger reports nothing left to rewrite.
func (s *BadgerStore) Maintain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) ||
			errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// Close closes the database if this store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
