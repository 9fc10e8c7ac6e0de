// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/geoscope/internal/logging"
)

// EventBusRunner matches the lifecycle of *eventbus.Bus.
type EventBusRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// EventBusService runs the verdict event bus router.
//
// A watermill router cannot be started twice, so once Run has returned the
// bus is closed and the service asks suture not to restart it.
type EventBusService struct {
	bus  EventBusRunner
	name string
}

// NewEventBusService creates an event bus service wrapper.
func NewEventBusService(bus EventBusRunner) *EventBusService {
	return &EventBusService{
		bus:  bus,
		name: "event-bus",
	}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	runErr := s.bus.Run(ctx)

	if err := s.bus.Close(); err != nil {
		logging.Warn().Err(err).Msg("Event bus close failed")
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		logging.Error().Err(runErr).Msg("Event bus stopped unexpectedly")
		return fmt.Errorf("event bus stopped: %v: %w", runErr, suture.ErrDoNotRestart)
	}
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for logging.
func (s *EventBusService) String() string {
	return s.name
}
