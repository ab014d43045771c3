// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/tourmind/tourmind/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("AUTH_INVALID_INPUT").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("username", "ada").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "username", "ada")
}
