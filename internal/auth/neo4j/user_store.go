// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package neo4j implements auth.UserStore on the graph.
package neo4j

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/samber/oops"

	"github.com/tourmind/tourmind/internal/auth"
	"github.com/tourmind/tourmind/internal/graph"
)

// UserStore persists users as (:User) nodes keyed by username. Every call
// is a single managed transaction via ExecuteQuery.
type UserStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewUserStore creates a new UserStore. An empty database falls back to
// graph.DefaultDatabase.
func NewUserStore(driver neo4j.DriverWithContext, database string) *UserStore {
	if database == "" {
		database = graph.DefaultDatabase
	}
	return &UserStore{driver: driver, database: database}
}

// Upsert creates the user if absent, or refreshes last_active if present.
// An existing user's password hash is left untouched.
func (s *UserStore) Upsert(ctx context.Context, username, passwordHash string) (bool, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MERGE (u:User {username: $username})
		ON CREATE SET u.password_hash = $password_hash,
		              u.created_at = $now,
		              u.last_active = $now
		ON MATCH SET u.last_active = $now
	`, map[string]any{
		"username":      username,
		"password_hash": passwordHash,
		"now":           time.Now().UTC(),
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return false, oops.Code("USER_UPSERT_FAILED").
			With("operation", "upsert user").
			With("username", username).
			Wrap(err)
	}
	return result.Summary.Counters().NodesCreated() > 0, nil
}

// Get retrieves a user by username.
func (s *UserStore) Get(ctx context.Context, username string) (*auth.User, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MATCH (u:User {username: $username})
		RETURN u.username AS username,
		       u.password_hash AS password_hash,
		       u.created_at AS created_at,
		       u.last_active AS last_active
	`, map[string]any{
		"username": username,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	if len(result.Records) == 0 {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return scanUser(result.Records[0])
}

// TouchLastActive sets last_active to now for an existing user.
func (s *UserStore) TouchLastActive(ctx context.Context, username string) error {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MATCH (u:User {username: $username})
		SET u.last_active = $now
		RETURN u.username AS username
	`, map[string]any{
		"username": username,
		"now":      time.Now().UTC(),
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return oops.Code("USER_TOUCH_FAILED").
			With("operation", "touch last_active").
			With("username", username).
			Wrap(err)
	}
	if len(result.Records) == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePasswordHash replaces only the stored password hash.
func (s *UserStore) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, `
		MATCH (u:User {username: $username})
		SET u.password_hash = $password_hash
		RETURN u.username AS username
	`, map[string]any{
		"username":      username,
		"password_hash": passwordHash,
	}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password hash").
			With("username", username).
			Wrap(err)
	}
	if len(result.Records) == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser reads one RETURN row into an auth.User.
func scanUser(record *neo4j.Record) (*auth.User, error) {
	username, _, err := neo4j.GetRecordValue[string](record, "username")
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").With("field", "username").Wrap(err)
	}
	passwordHash, _, err := neo4j.GetRecordValue[string](record, "password_hash")
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").With("field", "password_hash").Wrap(err)
	}
	createdAt, _, err := neo4j.GetRecordValue[time.Time](record, "created_at")
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").With("field", "created_at").Wrap(err)
	}
	lastActive, _, err := neo4j.GetRecordValue[time.Time](record, "last_active")
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").With("field", "last_active").Wrap(err)
	}

	return &auth.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		LastActive:   lastActive,
	}, nil
}

// Compile-time interface check.
var _ auth.UserStore = (*UserStore)(nil)
