// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("tourmind/memory")

// Service validates fact writes and reads before they reach the store.
// Not-found errors pass through untouched; any other store failure is
// tagged MEMORY_BACKEND_UNAVAILABLE so callers can tell "bad request"
// from "graph is down".
type Service struct {
	store Store
}

// NewService creates a memory service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RecordMemory appends a free-text memory to the user's history.
func (s *Service) RecordMemory(ctx context.Context, username, text string) (err error) {
	ctx, span := tracer.Start(ctx, "memory.record_memory",
		trace.WithAttributes(
			attribute.String("memory.username", username),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if username == "" {
		return oops.Code("MEMORY_INVALID_INPUT").Errorf("username cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return oops.Code("MEMORY_INVALID_INPUT").Errorf("memory text cannot be blank")
	}

	if err := s.store.CreateMemory(ctx, username, text); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("MEMORY_BACKEND_UNAVAILABLE").
			With("operation", "record memory").
			With("username", username).
			Wrap(err)
	}

	slog.DebugContext(ctx, "memory recorded", "username", username)
	return nil
}

// RecordFacts appends one preference fact node per entry. An empty batch
// is a no-op. Facts are stored as given; recording the same text twice
// stores two nodes.
func (s *Service) RecordFacts(ctx context.Context, username string, facts []Fact) (err error) {
	ctx, span := tracer.Start(ctx, "memory.record_facts",
		trace.WithAttributes(
			attribute.String("memory.username", username),
			attribute.Int("memory.fact_count", len(facts)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if username == "" {
		return oops.Code("MEMORY_INVALID_INPUT").Errorf("username cannot be empty")
	}
	if len(facts) == 0 {
		return nil
	}
	for i, fact := range facts {
		if strings.TrimSpace(fact.Text) == "" {
			return oops.Code("MEMORY_INVALID_INPUT").
				With("index", i).
				Errorf("fact text cannot be blank")
		}
	}

	if err := s.store.CreateFacts(ctx, username, facts); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("MEMORY_BACKEND_UNAVAILABLE").
			With("operation", "record facts").
			With("username", username).
			Wrap(err)
	}

	slog.DebugContext(ctx, "facts recorded", "username", username, "count", len(facts))
	return nil
}

// Preferences returns everything the graph knows about the user. Unknown
// users get an empty snapshot, not an error.
func (s *Service) Preferences(ctx context.Context, username string) (snapshot *PreferenceSnapshot, err error) {
	ctx, span := tracer.Start(ctx, "memory.preferences",
		trace.WithAttributes(
			attribute.String("memory.username", username),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if username == "" {
		return nil, oops.Code("MEMORY_INVALID_INPUT").Errorf("username cannot be empty")
	}

	snapshot, err = s.store.Snapshot(ctx, username)
	if err != nil {
		return nil, oops.Code("MEMORY_BACKEND_UNAVAILABLE").
			With("operation", "load preferences").
			With("username", username).
			Wrap(err)
	}
	return snapshot, nil
}
