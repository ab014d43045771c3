// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// User represents an identity node in the graph.
// Usernames are case-sensitive and unique.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastActive   time.Time
}

// NewUser creates a validated User instance.
func NewUser(username, passwordHash string) (*User, error) {
	if username == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastActive:   now,
	}, nil
}

// ValidateCredentialInput checks the raw signup/login input.
// Usernames and passwords only need to be non-empty; anything beyond
// that is a product decision this layer does not make.
func ValidateCredentialInput(username, password string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_INPUT").Errorf("username cannot be empty")
	}
	if password == "" {
		return oops.Code("AUTH_INVALID_INPUT").Errorf("password cannot be empty")
	}
	return nil
}

// UserStore manages user persistence in the graph.
type UserStore interface {
	// Upsert creates the user if absent, or refreshes last_active if
	// present. The stored password hash is never overwritten for an
	// existing user. Returns whether a new node was created.
	Upsert(ctx context.Context, username, passwordHash string) (created bool, err error)

	// Get retrieves a user by username. Returns an error wrapping
	// ErrNotFound if no such user exists.
	Get(ctx context.Context, username string) (*User, error)

	// TouchLastActive sets last_active to now for an existing user.
	TouchLastActive(ctx context.Context, username string) error

	// UpdatePasswordHash replaces only the stored password hash.
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}
