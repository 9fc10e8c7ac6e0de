// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package services

import (
	"context"
	"time"

	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/store"
)

// DefaultMaintenanceInterval is used when no interval is given.
const DefaultMaintenanceInterval = 10 * time.Minute

// StoreMaintenanceService periodically runs store housekeeping: the memory
// backend drops expired records and badger reclaims value log space.
// Failed runs are logged and retried on the next tick.
type StoreMaintenanceService struct {
	store    store.Store
	interval time.Duration
	name     string
}

// NewStoreMaintenanceService creates a maintenance service for st.
func NewStoreMaintenanceService(st store.Store, interval time.Duration) *StoreMaintenanceService {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	return &StoreMaintenanceService{
		store:    st,
		interval: interval,
		name:     "store-maintenance",
	}
}

// Serve implements suture.Service.
func (s *StoreMaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := store.Maintain(ctx, s.store); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Warn().Err(err).Msg("Store maintenance failed")
				continue
			}
			logging.Debug().Dur("took", time.Since(start)).Msg("Store maintenance complete")
		}
	}
}

// String implements fmt.Stringer for logging.
func (s *StoreMaintenanceService) String() string {
	return s.name
}
