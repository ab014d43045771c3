// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package neo4j implements memory.Store on the graph.
package neo4j

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tourmind/tourmind/internal/graph"
	"github.com/tourmind/tourmind/internal/memory"
)

// Store persists fact nodes attached to (:User) nodes. Every call is a
// single managed transaction via ExecuteQuery. Writes MATCH the user
// first, so a missing user means nothing is created.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewStore creates a new Store. An empty database falls back to
// graph.DefaultDatabase.
func NewStore(driver neo4j.DriverWithContext, database string) *Store {
	if database == "" {
		database = graph.DefaultDatabase
	}
	return &Store{driver: driver, database: database}
}

// CreateMemory appends a (:Memory) node linked via REMEMBERS.
func (s *Store) CreateMemory(ctx context.Context, username, text string) error {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MATCH (u:User {username: $username})
		CREATE (m:Memory {id: $id, text: $text, timestamp: $timestamp})
		CREATE (u)-[:REMEMBERS]->(m)
		RETURN m.id AS id
	`, map[string]any{
		"username":  username,
		"id":        ulid.Make().String(),
		"text":      text,
		"timestamp": time.Now().UTC(),
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return oops.Code("MEMORY_CREATE_FAILED").
			With("operation", "create memory").
			With("username", username).
			Wrap(err)
	}
	if len(result.Records) == 0 {
		return oops.Code("MEMORY_USER_NOT_FOUND").
			With("username", username).
			Wrap(memory.ErrNotFound)
	}
	return nil
}

// CreateFacts appends one (:Preference) node per fact, linked via
// INTERESTED_IN. Duplicate texts get distinct nodes; each carries its
// own ULID.
func (s *Store) CreateFacts(ctx context.Context, username string, facts []memory.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	rows := make([]map[string]any, len(facts))
	for i, fact := range facts {
		rows[i] = map[string]any{
			"id":   ulid.Make().String(),
			"text": fact.Text,
		}
	}

	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MATCH (u:User {username: $username})
		UNWIND $facts AS fact
		CREATE (p:Preference {id: fact.id, text: fact.text})
		CREATE (u)-[:INTERESTED_IN]->(p)
		RETURN count(p) AS created
	`, map[string]any{
		"username": username,
		"facts":    rows,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return oops.Code("FACT_CREATE_FAILED").
			With("operation", "create facts").
			With("username", username).
			Wrap(err)
	}

	// With aggregation-only RETURN the query always yields one row; a
	// zero count means the user MATCH found nothing and no write ran.
	created := int64(0)
	if len(result.Records) > 0 {
		created, _, err = neo4j.GetRecordValue[int64](result.Records[0], "created")
		if err != nil {
			return oops.Code("MEMORY_SCAN_FAILED").With("field", "created").Wrap(err)
		}
	}
	if created == 0 {
		return oops.Code("MEMORY_USER_NOT_FOUND").
			With("username", username).
			Wrap(memory.ErrNotFound)
	}
	return nil
}

// Snapshot collects the user's facts grouped by relationship type. Edges
// are matched by type alone, not target label, so extracted facts appear
// next to seeded ones.
func (s *Store) Snapshot(ctx context.Context, username string) (*memory.PreferenceSnapshot, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MATCH (u:User {username: $username})
		OPTIONAL MATCH (u)-[:HAS_PREFERENCE]->(p)
		OPTIONAL MATCH (u)-[:VISITED]->(c)
		OPTIONAL MATCH (u)-[:INTERESTED_IN]->(i)
		RETURN collect(DISTINCT properties(p)) AS preferences,
		       collect(DISTINCT properties(c)) AS visited_cities,
		       collect(DISTINCT properties(i)) AS interests
	`, map[string]any{
		"username": username,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return nil, oops.Code("MEMORY_SNAPSHOT_FAILED").
			With("operation", "snapshot").
			With("username", username).
			Wrap(err)
	}
	if len(result.Records) == 0 {
		return &memory.PreferenceSnapshot{
			Preferences:   []map[string]any{},
			VisitedCities: []map[string]any{},
			Interests:     []map[string]any{},
		}, nil
	}

	record := result.Records[0]
	preferences, err := propertyMaps(record, "preferences")
	if err != nil {
		return nil, err
	}
	visited, err := propertyMaps(record, "visited_cities")
	if err != nil {
		return nil, err
	}
	interests, err := propertyMaps(record, "interests")
	if err != nil {
		return nil, err
	}

	return &memory.PreferenceSnapshot{
		Preferences:   preferences,
		VisitedCities: visited,
		Interests:     interests,
	}, nil
}

// propertyMaps reads a collected list of node property maps.
func propertyMaps(record *neo4j.Record, key string) ([]map[string]any, error) {
	raw, _, err := neo4j.GetRecordValue[[]any](record, key)
	if err != nil {
		return nil, oops.Code("MEMORY_SCAN_FAILED").With("field", key).Wrap(err)
	}

	maps := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, oops.Code("MEMORY_SCAN_FAILED").
				With("field", key).
				Errorf("unexpected collected item type %T", item)
		}
		maps = append(maps, m)
	}
	return maps, nil
}

// Compile-time interface check.
var _ memory.Store = (*Store)(nil)
