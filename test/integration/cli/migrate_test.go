// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

//go:build integration

package cli_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("Migrate Command", func() {
	// Other specs migrate as a side effect, so each spec first moves the
	// schema to the state it needs instead of assuming a fresh graph.

	It("applies the embedded migrations and reports the version", func() {
		_, stderr, err := runCLI(append([]string{"migrate", "--down"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "rollback failed: %s", stderr)

		stdout, stderr, err := runCLI(append([]string{"migrate"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "migrate failed: %s", stderr)
		Expect(stdout).To(ContainSubstring("Applying 2 pending migrations:"))
		Expect(stdout).To(ContainSubstring("000001_user_constraints"))
		Expect(stdout).To(ContainSubstring("000002_fact_indexes"))
		Expect(stdout).To(ContainSubstring("Schema at version 2"))
		Expect(stdout).To(ContainSubstring("Migrations completed successfully"))
	})

	It("reports no pending migrations when rerun", func() {
		_, stderr, err := runCLI(append([]string{"migrate"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "first migrate failed: %s", stderr)

		stdout, stderr, err := runCLI(append([]string{"migrate"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "second migrate failed: %s", stderr)
		Expect(stdout).To(ContainSubstring("No pending migrations"))
		Expect(stdout).To(ContainSubstring("Schema at version 2"))
	})

	It("rolls back all migrations with --down", func() {
		_, stderr, err := runCLI(append([]string{"migrate"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "migrate failed: %s", stderr)

		stdout, stderr, err := runCLI(append([]string{"migrate", "--down"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "rollback failed: %s", stderr)
		Expect(stdout).To(ContainSubstring("Rolling back 2 applied migrations..."))
		Expect(stdout).To(ContainSubstring("Schema is empty"))

		// Leave the schema in place for whichever spec runs next.
		_, stderr, err = runCLI(append([]string{"migrate"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "reapply failed: %s", stderr)
	})

	It("rejects an unparseable --force value", func() {
		_, stderr, err := runCLI(append([]string{"migrate", "--force", "abc"}, graphFlags()...)...)
		Expect(err).To(HaveOccurred())
		Expect(stderr).To(ContainSubstring("parse force version"))
	})

	It("rejects combined modes", func() {
		_, stderr, err := runCLI(append([]string{"migrate", "--down", "--steps", "1"}, graphFlags()...)...)
		Expect(err).To(HaveOccurred())
		Expect(stderr).To(ContainSubstring("mutually exclusive"))
	})
})
