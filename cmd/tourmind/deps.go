// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package main

import (
	"context"
	"io"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tourmind/tourmind/internal/config"
	"github.com/tourmind/tourmind/internal/graph"
	"github.com/tourmind/tourmind/internal/llm"
	"github.com/tourmind/tourmind/internal/memory"
	"github.com/tourmind/tourmind/internal/observability"
	"github.com/tourmind/tourmind/internal/weather"
)

// ChatDeps contains injectable dependencies for the chat command.
// All fields with nil values will use their default implementations.
type ChatDeps struct {
	// GraphConnector opens the graph driver.
	// Default: graph.Connect
	GraphConnector func(ctx context.Context, cfg graph.Config) (neo4j.DriverWithContext, error)

	// AuthFactory builds the auth service over the graph driver.
	// Default: argon2id hasher + graph-backed user store + in-memory sessions
	AuthFactory func(driver neo4j.DriverWithContext, database string) (AuthService, error)

	// MemoryFactory builds the memory service over the graph driver.
	// Default: memory.NewService over the graph-backed store
	MemoryFactory func(driver neo4j.DriverWithContext, database string) MemoryService

	// LLMFactory builds the chat completion client.
	// Default: llm.NewOllama
	LLMFactory func(cfg config.LLMConfig) llm.Client

	// WeatherFactory builds the weather provider.
	// Default: weather.NewClient
	WeatherFactory func(cfg config.WeatherConfig) weather.Provider

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// PasswordReader reads a password without echo. Nil means prompt on
	// the terminal, falling back to a plain line read when stdin is not
	// a terminal.
	PasswordReader func() (string, error)

	// Input is the REPL input stream.
	// Default: os.Stdin
	Input io.Reader
}

// StatusDeps contains injectable dependencies for the status command.
// All fields with nil values will use their default implementations.
type StatusDeps struct {
	// GraphPinger checks graph connectivity.
	GraphPinger func(ctx context.Context, cfg graph.Config) error

	// LLMPinger checks the chat endpoint.
	LLMPinger func(ctx context.Context, cfg config.LLMConfig) error

	// WeatherPinger checks the weather API.
	WeatherPinger func(ctx context.Context, cfg config.WeatherConfig) error
}

// AuthService is the surface of auth.Service the chat command uses.
type AuthService interface {
	Signup(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ValidateSession(token string) bool
	Logout(token string)
}

// MemoryService is the surface of memory.Service the chat command uses.
type MemoryService interface {
	RecordMemory(ctx context.Context, username, text string) error
	RecordFacts(ctx context.Context, username string, facts []memory.Fact) error
	Preferences(ctx context.Context, username string) (*memory.PreferenceSnapshot, error)
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
