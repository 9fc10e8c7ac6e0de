// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/models"
)

func newTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging for tests
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(sessionID string) *models.CaptureRecord {
	tz := "Europe/Madrid"
	return &models.CaptureRecord{
		Capture: models.RawCapture{
			SessionID: sessionID,
			GPS: &models.GPSReading{
				Latitude:  models.Float64Ptr(40.4168),
				Longitude: models.Float64Ptr(-3.7038),
				AccuracyM: models.Float64Ptr(12),
			},
			IPResults: []models.IPGeoResult{{
				ServiceName: "ip-api",
				Country:     "ES",
				Latitude:    models.Float64Ptr(40.41),
				Longitude:   models.Float64Ptr(-3.70),
				Timezone:    &tz,
			}},
			DeviceTimezone: &tz,
			MousePoints:    []models.MousePoint{{X: 1, Y: 2, T: 3}},
			Network:        models.NetworkFlags{IsProxy: true},
			CapturedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Analysis: &models.AnalysisResult{
			FusedLocation: models.FusedLocation{
				MethodsUsed:              []models.LocationMethod{models.MethodGPS},
				LocationConsistencyScore: 100,
			},
			RiskVerdict: models.RiskVerdict{
				RiskScore:       30,
				RiskLevel:       models.RiskLow,
				RiskFactors:     []models.Factor{{Kind: models.FactorProxy, Points: 30}},
				Recommendations: []string{"Permitir el acceso normal"},
			},
			AnalysisTimestamp: time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
		},
		StoredAt: time.Date(2026, 3, 1, 12, 0, 2, 0, time.UTC),
	}
}

// TestStoreContract runs the same checks against every local backend.
func TestStoreContract(t *testing.T) {
	backends := []struct {
		name string
		new  func(t *testing.T) Store
	}{
		{"memory", func(*testing.T) Store { return NewMemoryStore(0) }},
		{"badger", func(t *testing.T) Store { return NewBadgerStore(newTestBadgerDB(t), 0) }},
		{"instrumented", func(*testing.T) Store { return Instrument("memory", NewMemoryStore(0)) }},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("round trip", func(t *testing.T) {
				s := b.new(t)
				want := sampleRecord("sess-1")
				if err := s.Save(ctx, want); err != nil {
					t.Fatalf("Save() error = %v", err)
				}

				got, err := s.Get(ctx, "sess-1")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got.Capture.SessionID != "sess-1" {
					t.Errorf("SessionID = %q", got.Capture.SessionID)
				}
				if got.Capture.GPS == nil || got.Capture.GPS.AccuracyM == nil || *got.Capture.GPS.AccuracyM != 12 {
					t.Errorf("GPS = %+v", got.Capture.GPS)
				}
				if len(got.Capture.IPResults) != 1 || *got.Capture.IPResults[0].Latitude != 40.41 {
					t.Errorf("IPResults = %+v", got.Capture.IPResults)
				}
				if !got.Capture.Network.IsProxy {
					t.Error("Network.IsProxy lost")
				}
				if got.Analysis == nil || got.Analysis.RiskVerdict.RiskScore != 30 {
					t.Fatalf("Analysis = %+v", got.Analysis)
				}
				if !got.Analysis.RiskVerdict.HasFactor(models.FactorProxy) {
					t.Error("proxy factor lost")
				}
				if !got.Capture.CapturedAt.Equal(want.Capture.CapturedAt) {
					t.Errorf("CapturedAt = %v, want %v", got.Capture.CapturedAt, want.Capture.CapturedAt)
				}
			})

			t.Run("not found", func(t *testing.T) {
				s := b.new(t)
				if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("save replaces", func(t *testing.T) {
				s := b.new(t)
				rec := sampleRecord("sess-2")
				if err := s.Save(ctx, rec); err != nil {
					t.Fatal(err)
				}
				rec2 := sampleRecord("sess-2")
				rec2.Analysis.RiskVerdict.RiskScore = 95
				rec2.Analysis.RiskVerdict.RiskLevel = models.RiskHigh
				if err := s.Save(ctx, rec2); err != nil {
					t.Fatal(err)
				}
				got, err := s.Get(ctx, "sess-2")
				if err != nil {
					t.Fatal(err)
				}
				if got.Analysis.RiskVerdict.RiskScore != 95 {
					t.Errorf("RiskScore = %d, want 95", got.Analysis.RiskVerdict.RiskScore)
				}
			})

			t.Run("invalid record", func(t *testing.T) {
				s := b.new(t)
				if err := s.Save(ctx, nil); !errors.Is(err, ErrInvalidRecord) {
					t.Errorf("Save(nil) = %v, want ErrInvalidRecord", err)
				}
				if err := s.Save(ctx, &models.CaptureRecord{}); !errors.Is(err, ErrInvalidRecord) {
					t.Errorf("Save(empty) = %v, want ErrInvalidRecord", err)
				}
			})

			t.Run("cancelled context", func(t *testing.T) {
				s := b.new(t)
				cctx, cancel := context.WithCancel(ctx)
				cancel()
				if err := s.Save(cctx, sampleRecord("sess-3")); !errors.Is(err, context.Canceled) {
					t.Errorf("Save() = %v, want context.Canceled", err)
				}
			})
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	rec := sampleRecord("sess-iso")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Capture.IPResults[0].ServiceName = "mutated"
	rec.Analysis.RiskVerdict.Recommendations[0] = "mutated"

	got, err := s.Get(ctx, "sess-iso")
	if err != nil {
		t.Fatal(err)
	}
	if got.Capture.IPResults[0].ServiceName != "ip-api" {
		t.Error("store shares IPResults with the caller")
	}
	if got.Analysis.RiskVerdict.Recommendations[0] != "Permitir el acceso normal" {
		t.Error("store shares Recommendations with the caller")
	}

	got.Capture.MousePoints[0].X = 999
	again, _ := s.Get(ctx, "sess-iso")
	if again.Capture.MousePoints[0].X != 1 {
		t.Error("Get returns shared MousePoints")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	if err := s.Save(ctx, sampleRecord("sess-ttl")); err != nil {
		t.Fatal(err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := s.Get(ctx, "sess-ttl"); err != nil {
		t.Fatalf("Get() before expiry = %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "sess-ttl"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired record not evicted, Len() = %d", s.Len())
	}
}

func TestMemoryStoreExpiryKeepsConcurrentSave(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s := NewMemoryStore(time.Hour)
	var resave func()
	s.now = func() time.Time {
		// Runs between the read of the expired entry and its eviction.
		if resave != nil {
			fn := resave
			resave = nil
			fn()
		}
		return now
	}

	if err := s.Save(ctx, sampleRecord("sess-race")); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)

	resave = func() {
		if err := s.Save(ctx, sampleRecord("sess-race")); err != nil {
			t.Errorf("Save() = %v", err)
		}
	}
	if _, err := s.Get(ctx, "sess-race"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() of the expired entry = %v, want ErrNotFound", err)
	}

	if _, err := s.Get(ctx, "sess-race"); err != nil {
		t.Errorf("record saved during eviction was lost: %v", err)
	}
}

func TestBadgerStoreCloseOwnership(t *testing.T) {
	db := newTestBadgerDB(t)
	s := NewBadgerStore(db, 0)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if db.IsClosed() {
		t.Error("Close() closed a database the store does not own")
	}
	if err := Ping(context.Background(), s); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}

func TestOpenBadgerStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("OpenBadgerStore() = %v", err)
	}
	if err := s.Save(ctx, sampleRecord("sess-disk")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, "sess-disk"); err != nil {
		t.Errorf("record not persisted: %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{"memory", config.StoreConfig{Backend: config.StoreBackendMemory}, false},
		{"empty defaults to memory", config.StoreConfig{}, false},
		{"badger", config.StoreConfig{Backend: config.StoreBackendBadger}, false},
		{"redis without addr", config.StoreConfig{Backend: config.StoreBackendRedis}, true},
		{"unknown", config.StoreConfig{Backend: "etcd"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Backend == config.StoreBackendBadger {
				tt.cfg.BadgerPath = t.TempDir()
			}
			s, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}

func TestMaintain(t *testing.T) {
	ctx := context.Background()

	t.Run("memory sweeps expired records", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		s := NewMemoryStore(time.Hour)
		s.now = func() time.Time { return now }

		for _, id := range []string{"a", "b"} {
			if err := s.Save(ctx, sampleRecord(id)); err != nil {
				t.Fatal(err)
			}
		}
		now = now.Add(30 * time.Minute)
		if err := s.Save(ctx, sampleRecord("c")); err != nil {
			t.Fatal(err)
		}

		now = now.Add(45 * time.Minute)
		if err := Maintain(ctx, Instrument("memory", s)); err != nil {
			t.Fatalf("Maintain() = %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d after sweep, want 1", s.Len())
		}
	})

	t.Run("memory without ttl keeps everything", func(t *testing.T) {
		s := NewMemoryStore(0)
		if err := s.Save(ctx, sampleRecord("forever")); err != nil {
			t.Fatal(err)
		}
		if err := s.Maintain(ctx); err != nil || s.Len() != 1 {
			t.Errorf("Maintain() = %v, Len() = %d", err, s.Len())
		}
	})

	t.Run("badger in memory is a no-op", func(t *testing.T) {
		s := NewBadgerStore(newTestBadgerDB(t), 0)
		if err := s.Maintain(ctx); err != nil {
			t.Errorf("Maintain() = %v, want nil", err)
		}
	})

	t.Run("badger on disk", func(t *testing.T) {
		s, err := OpenBadgerStore(t.TempDir(), 0)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		if err := s.Save(ctx, sampleRecord("gc")); err != nil {
			t.Fatal(err)
		}
		if err := s.Maintain(ctx); err != nil {
			t.Errorf("Maintain() = %v, want nil", err)
		}
	})

	t.Run("store without housekeeping", func(t *testing.T) {
		if err := Maintain(ctx, struct{ Store }{NewMemoryStore(time.Minute)}); err != nil {
			t.Errorf("Maintain() = %v, want nil for stores without Maintainer", err)
		}
	})
}
