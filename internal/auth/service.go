// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("tourmind/auth")

// Service is the authentication entry point: it registers users, turns
// verified credentials into session tokens, and answers token lookups
// for the rest of the program.
type Service struct {
	credentials *CredentialStore
	sessions    *SessionRegistry
}

// NewService creates an auth service over the given credential store and
// session registry.
func NewService(credentials *CredentialStore, sessions *SessionRegistry) *Service {
	return &Service{
		credentials: credentials,
		sessions:    sessions,
	}
}

// Signup registers a new user and logs them in. Signing up an existing
// username leaves the stored password alone, so the login step only
// succeeds when the supplied password matches the stored one.
func (s *Service) Signup(ctx context.Context, username, password string) (string, error) {
	if err := s.credentials.Register(ctx, username, password); err != nil {
		return "", err
	}
	return s.Login(ctx, username, password)
}

// Login verifies credentials and issues a session token. A wrong password
// and an unknown username produce the same AUTH_INVALID_CREDENTIALS error;
// store outages surface as AUTH_BACKEND_UNAVAILABLE instead so callers can
// tell "rejected" from "don't know".
func (s *Service) Login(ctx context.Context, username, password string) (token string, err error) {
	ctx, span := tracer.Start(ctx, "auth.login",
		trace.WithAttributes(
			attribute.String("auth.username", username),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	valid, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
	}

	token, err = s.sessions.Issue(username)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "login succeeded", "username", username)
	return token, nil
}

// ValidateSession reports whether token identifies a live session.
func (s *Service) ValidateSession(token string) bool {
	return s.sessions.Validate(token)
}

// SessionUser returns the username behind a live session token.
func (s *Service) SessionUser(token string) (string, bool) {
	return s.sessions.Owner(token)
}

// Logout revokes a session token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	return s.sessions.Len()
}
