// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package testinfra starts Docker containers for integration tests.
//
// Everything here is behind the integration build tag, so plain go test
// runs never need Docker:
//
//	go test -tags integration ./internal/store/...
//
// # Redis Container
//
//	func TestRedisRoundTrip(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc)
//
//	    cfg.RedisAddr = rc.Addr
//	    // ...
//	}
//
// Tests are skipped when the Docker daemon is unreachable. The first run
// pulls the image; later runs use the local cache.
package testinfra
