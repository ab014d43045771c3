// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package memory records what the assistant learns about a user and
// reads it back as a preference snapshot.
//
// Three kinds of writes reach the graph: free-text memories, extracted
// preference facts, and the seed data loaded by the CLI. Reads collapse
// everything attached to a user into a PreferenceSnapshot. Fact nodes
// are never deduplicated; recording the same fact twice stores it twice.
package memory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Fact is a single extracted preference statement.
type Fact struct {
	Text string `json:"text" yaml:"text" jsonschema:"title=Fact text,description=A single preference statement about the user,minLength=1"`
}

// PreferenceSnapshot is everything the graph knows about a user, grouped
// by relationship. Items are raw fact-node property maps since fact nodes
// are heterogeneous.
type PreferenceSnapshot struct {
	Preferences   []map[string]any `json:"preferences"`
	VisitedCities []map[string]any `json:"visited_cities"`
	Interests     []map[string]any `json:"interests"`
}

// Empty reports whether the snapshot holds no facts at all.
func (s *PreferenceSnapshot) Empty() bool {
	return len(s.Preferences) == 0 && len(s.VisitedCities) == 0 && len(s.Interests) == 0
}

// Store manages fact persistence in the graph.
type Store interface {
	// CreateMemory appends a Memory node linked to the user via
	// REMEMBERS. Returns an error wrapping ErrNotFound if the user
	// does not exist; nothing is written in that case.
	CreateMemory(ctx context.Context, username, text string) error

	// CreateFacts appends one Preference node per fact, each linked to
	// the user via INTERESTED_IN. No deduplication. Returns an error
	// wrapping ErrNotFound if the user does not exist.
	CreateFacts(ctx context.Context, username string, facts []Fact) error

	// Snapshot collects the user's preference, visited-city, and
	// interest facts. A user with no facts, or no user at all, yields
	// an empty snapshot rather than an error.
	Snapshot(ctx context.Context, username string) (*PreferenceSnapshot, error)
}
