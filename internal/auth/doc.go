// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package auth provides authentication primitives for TourMind.
//
// # Domain Types
//
// User is the graph-backed identity record, keyed by case-sensitive
// username. Create instances with NewUser so that field validation runs;
// direct struct initialization bypasses it. Sessions are in-memory only
// and owned by SessionRegistry; they are never written to the graph and
// do not survive a process restart.
//
// # Services
//
//   - CredentialStore - registers users and verifies passwords against
//     the graph store
//   - SessionRegistry - issues, validates and revokes bearer tokens
//   - Service - composes the two into signup/login/validate/logout
//
// # Password schemes
//
// Two hashing schemes are supported. The default, argon2id, is a salted
// slow hash and is a deliberate upgrade over the unsalted sha256 digests
// that earlier deployments wrote; those digests remain verifiable and are
// transparently rehashed on the next successful login. Selecting
// SchemeSHA256 keeps writing the legacy digest format for byte-for-byte
// compatibility with graphs produced by older releases.
//
// Registering an existing username succeeds without touching the stored
// credential; only last_active is refreshed. Callers that need
// create-only semantics must check for the user themselves first.
package auth
