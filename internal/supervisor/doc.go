// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

/*
Package supervisor runs the geoscope background services under a suture v4
supervisor tree.

The tree has three layers, each its own supervisor so that a crash loop in
one does not take the others down:

	geoscope
	├── data-layer        store maintenance (expiry sweep, badger GC)
	├── messaging-layer   verdict event bus (watermill router)
	└── api-layer         HTTP server

Supervisor events are logged through sutureslog into the zerolog-backed
slog logger from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewStoreMaintenanceService(st, time.Hour))
	tree.AddMessagingService(services.NewEventBusService(bus))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
