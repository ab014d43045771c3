// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CredentialStore registers users and verifies their passwords against
// the user store. Passwords never leave this type unhashed.
type CredentialStore struct {
	users  UserStore
	hasher PasswordHasher
	logger *slog.Logger
}

// NewCredentialStore creates a CredentialStore over the given user store.
func NewCredentialStore(users UserStore, hasher PasswordHasher) *CredentialStore {
	return NewCredentialStoreWithLogger(users, hasher, slog.Default())
}

// NewCredentialStoreWithLogger creates a CredentialStore with an explicit
// logger for best-effort failure reporting.
func NewCredentialStoreWithLogger(users UserStore, hasher PasswordHasher, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates the user if absent. Registering an existing username
// succeeds without touching the stored password; only last_active moves.
func (c *CredentialStore) Register(ctx context.Context, username, password string) error {
	if err := ValidateCredentialInput(username, password); err != nil {
		return err
	}

	hash, err := c.hasher.Hash(password)
	if err != nil {
		return oops.Code("AUTH_BACKEND_UNAVAILABLE").
			With("operation", "hash password").
			Wrap(err)
	}

	created, err := c.users.Upsert(ctx, username, hash)
	if err != nil {
		return oops.Code("AUTH_BACKEND_UNAVAILABLE").
			With("operation", "upsert user").
			With("username", username).
			Wrap(err)
	}

	if !created {
		c.logger.DebugContext(ctx, "register hit existing user, password unchanged",
			"username", username)
	}
	return nil
}

// Verify checks username/password against the store.
// Returns (true, nil) on match, (false, nil) when the user is missing or
// the password is wrong, and (false, err) when the store itself failed.
// Uses constant-time operations to prevent timing-based username enumeration.
func (c *CredentialStore) Verify(ctx context.Context, username, password string) (bool, error) {
	if err := ValidateCredentialInput(username, password); err != nil {
		return false, err
	}

	user, lookupErr := c.users.Get(ctx, username)

	// Determine which hash to verify against (real or dummy for timing attack prevention)
	var targetHash string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Use dummy hash - still perform verification to maintain constant time
			targetHash = dummyPasswordHash
			userExists = false
		} else {
			return false, oops.Code("AUTH_BACKEND_UNAVAILABLE").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify password (constant-time operation for timing attack prevention)
	valid, verifyErr := c.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// For dummy hash verification errors, just treat as invalid
		if !userExists {
			return false, nil
		}
		return false, oops.Code("AUTH_INVALID_HASH").
			With("operation", "verify password").
			With("username", username).
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return false, nil
	}

	// Check if password needs upgrade (e.g., from a legacy sha256 digest).
	// Verification succeeds even when the rehash cannot be stored.
	if c.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, hashErr := c.hasher.Hash(password); hashErr == nil {
			if err := c.users.UpdatePasswordHash(ctx, username, newHash); err != nil {
				c.logger.WarnContext(ctx, "best-effort password rehash failed",
					"operation", "update_password_hash",
					"username", username,
					"error", err)
			}
		}
	}

	// Verification succeeds even when the activity stamp cannot be written.
	if err := c.users.TouchLastActive(ctx, username); err != nil {
		c.logger.WarnContext(ctx, "best-effort last_active update failed",
			"operation", "touch_last_active",
			"username", username,
			"error", err)
	}

	return true, nil
}
