// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package auth

import (
	"sync"
	"time"
)

type sessionEntry struct {
	username string
	issuedAt time.Time
}

// SessionRegistry holds issued session tokens in memory. Entries expire
// ttl after issue; expiry is lazy, checked on lookup rather than by a
// background sweeper. Safe for concurrent use.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionRegistry creates an empty registry. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRegistry{
		sessions: make(map[string]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue generates a fresh token for username and records it.
func (r *SessionRegistry) Issue(username string) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = sessionEntry{username: username, issuedAt: r.now()}
	return token, nil
}

// Validate reports whether token identifies a live session. Expired
// entries are removed on the way out.
func (r *SessionRegistry) Validate(token string) bool {
	_, ok := r.Owner(token)
	return ok
}

// Owner returns the username behind a live session token.
func (r *SessionRegistry) Owner(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[token]
	if !ok {
		return "", false
	}
	if r.expired(entry) {
		delete(r.sessions, token)
		return "", false
	}
	return entry.username, true
}

// Revoke removes a session. Revoking an unknown or already-revoked token
// is a no-op.
func (r *SessionRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Len returns the number of live sessions, pruning expired entries.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, entry := range r.sessions {
		if r.expired(entry) {
			delete(r.sessions, token)
		}
	}
	return len(r.sessions)
}

// expired reports whether the entry's age strictly exceeds the ttl. A
// session aged exactly ttl is still live.
func (r *SessionRegistry) expired(entry sessionEntry) bool {
	return r.now().Sub(entry.issuedAt) > r.ttl
}
