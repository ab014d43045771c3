// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/samber/oops"
)

const (
	// SessionTokenBytes is the entropy of a session token in bytes.
	SessionTokenBytes = 32

	// DefaultSessionTTL is how long a session stays valid after issue.
	DefaultSessionTTL = 24 * time.Hour
)

// GenerateSessionToken produces a URL-safe random session token with
// SessionTokenBytes of entropy.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
