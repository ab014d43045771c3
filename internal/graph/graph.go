// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package graph manages the Neo4j connection shared by the stores.
package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	// DefaultDatabase is the Neo4j database used when none is configured.
	DefaultDatabase = "neo4j"

	connectBaseDelay  = time.Second
	connectMaxRetries = 5
)

// Config holds graph connection settings.
type Config struct {
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
}

// DatabaseName returns the configured database, falling back to DefaultDatabase.
func (c Config) DatabaseName() string {
	if c.Database == "" {
		return DefaultDatabase
	}
	return c.Database
}

// Connect opens a driver and verifies connectivity, retrying with fibonacci
// backoff so a graph that is still starting up doesn't fail the program.
// The caller owns the returned driver and must Close it.
func Connect(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, oops.Code("GRAPH_CONNECT_FAILED").
			With("operation", "create driver").
			With("uri", cfg.URI).
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewFibonacci(connectBaseDelay))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := driver.VerifyConnectivity(ctx); err != nil {
			slog.DebugContext(ctx, "graph not reachable yet, retrying", "uri", cfg.URI, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		_ = driver.Close(ctx) //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("GRAPH_CONNECT_FAILED").
			With("operation", "verify connectivity").
			With("uri", cfg.URI).
			Wrap(err)
	}

	return driver, nil
}

// Ping checks that the graph is reachable. Used by readiness probes.
func Ping(ctx context.Context, driver neo4j.DriverWithContext) error {
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return oops.Code("GRAPH_CONNECT_FAILED").
			With("operation", "ping").
			Wrap(err)
	}
	return nil
}
