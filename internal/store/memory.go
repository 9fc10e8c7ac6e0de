// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tomtom215/geoscope/internal/models"
)

type memoryEntry struct {
	rec       models.CaptureRecord
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore keeps records in a map. Records are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps records forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save stores rec, replacing any earlier record for the session.
func (m *MemoryStore) Save(ctx context.Context, rec *models.CaptureRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry{rec: cloneRecord(rec)}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.records[rec.Capture.SessionID] = entry
	m.mu.Unlock()
	return nil
}

// Get returns the record for sessionID or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*models.CaptureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	entry, ok := m.records[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if now := m.now(); entry.expired(now) {
		m.mu.Lock()
		// A Save may have replaced the entry since the read lock was released.
		if current, ok := m.records[sessionID]; ok && current.expired(now) {
			delete(m.records, sessionID)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	rec := cloneRecord(&entry.rec)
	return &rec, nil
}

// Maintain drops expired records.
func (m *MemoryStore) Maintain(ctx context.Context) error {
	if m.ttl <= 0 {
		return nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.expired(now) {
			delete(m.records, id)
		}
	}
	return nil
}

// Len returns the number of stored records, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// cloneRecord copies the slices and top-level pointers of a record. Nested
// pointers are shared; nothing in the analysis path writes through them.
func cloneRecord(rec *models.CaptureRecord) models.CaptureRecord {
	out := *rec
	c := &out.Capture

	if rec.Capture.GPS != nil {
		gps := *rec.Capture.GPS
		c.GPS = &gps
	}
	c.IPResults = slices.Clone(rec.Capture.IPResults)
	c.MousePoints = slices.Clone(rec.Capture.MousePoints)
	c.KeyEvents = slices.Clone(rec.Capture.KeyEvents)
	c.ScrollPoints = slices.Clone(rec.Capture.ScrollPoints)
	if rec.Capture.DeviceTimezone != nil {
		tz := *rec.Capture.DeviceTimezone
		c.DeviceTimezone = &tz
	}
	if rec.Capture.SessionDurationMS != nil {
		d := *rec.Capture.SessionDurationMS
		c.SessionDurationMS = &d
	}

	if rec.Analysis != nil {
		a := *rec.Analysis
		a.FusedLocation.MethodsUsed = slices.Clone(a.FusedLocation.MethodsUsed)
		a.FusedLocation.IPCandidates = slices.Clone(a.FusedLocation.IPCandidates)
		a.RiskVerdict.RiskFactors = slices.Clone(a.RiskVerdict.RiskFactors)
		a.RiskVerdict.Recommendations = slices.Clone(a.RiskVerdict.Recommendations)
		out.Analysis = &a
	}
	return out
}
