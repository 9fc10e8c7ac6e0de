// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package main is the entry point for the geoscope server.
//
// Geoscope receives location and interaction captures from a browser
// collector, fuses GPS and IP geolocation into one location estimate,
// profiles pointer and keyboard behavior for automation, and classifies
// each session into a bajo, medio or alto risk level.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, then environment (Koanf v2)
//  2. Store: memory, BadgerDB or Redis behind a circuit breaker
//  3. Enrichment: optional local MaxMind City, ASN and Anonymous IP databases
//  4. Analysis: fusion, behavior and risk pipeline with the configured policy
//  5. Event bus: in-process watermill pub/sub for verdicts and risk alerts
//  6. HTTP server: chi router under a suture supervisor tree
//
// # Configuration
//
// Commonly used environment variables:
//
//	HTTP_PORT=8470
//	STORE_BACKEND=badger BADGER_PATH=/data/geoscope
//	GEOIP_CITY_DB=/geoip/GeoLite2-City.mmdb
//	POLICY_TIMING_CHECK=cadence
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for HTTP_SHUTDOWN_TIMEOUT before the store closes.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tomtom215/geoscope/internal/analysis"
	"github.com/tomtom215/geoscope/internal/api"
	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/store"
	"github.com/tomtom215/geoscope/internal/supervisor"
	"github.com/tomtom215/geoscope/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingOptions())

	logging.Info().
		Str("store", cfg.Store.Backend).
		Bool("reputation", cfg.Reputation.Enabled).
		Bool("events", cfg.Events.Enabled).
		Str("timing_check", cfg.Policy.Behavior.TimingCheck).
		Msg("Starting geoscope")

	st, err := store.New(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	decoder, closeEnrichment := initDecoder(cfg)
	defer closeEnrichment()

	bus := initEventBus(cfg)

	var serviceOpts []analysis.ServiceOption
	if bus != nil {
		serviceOpts = append(serviceOpts, analysis.WithPublisher(bus))
	}
	service := analysis.NewService(analysis.NewPipeline(cfg.Policy), st, serviceOpts...)

	handler := api.NewHandler(service, decoder, cfg.Server.MaxBodyBytes)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Server)))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewStoreMaintenanceService(st, cfg.Store.MaintenanceInterval))
	if bus != nil {
		tree.AddMessagingService(services.NewEventBusService(bus))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Geoscope stopped")
}
