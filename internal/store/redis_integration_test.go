// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/testinfra"
)

func newContainerRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	rc, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, ctx, rc) })

	s, err := NewRedisStore(config.StoreConfig{
		RedisAddr:      rc.Addr,
		RedisKeyPrefix: "it:",
		TTL:            ttl,
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 5,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStoreIntegration(t *testing.T) {
	s := newContainerRedisStore(t, time.Hour)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() = %v", err)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	want := sampleRecord("sess-it")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	got, err := s.Get(ctx, "sess-it")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if got.Capture.SessionID != want.Capture.SessionID || got.Analysis == nil {
		t.Errorf("Get() = %+v", got)
	}
	if !got.Capture.CapturedAt.Equal(want.Capture.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", got.Capture.CapturedAt, want.Capture.CapturedAt)
	}
}

func TestRedisStoreIntegrationTTL(t *testing.T) {
	s := newContainerRedisStore(t, time.Second)
	ctx := context.Background()

	if err := s.Save(ctx, sampleRecord("sess-ttl")); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := s.Get(ctx, "sess-ttl"); errors.Is(err, ErrNotFound) {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Error("record did not expire")
}
