// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

//go:build integration

package cli_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("Seed Command", func() {
	Describe("Demo data seeding", func() {
		It("creates the demo user with sample travel data", func() {
			stdout, stderr, err := runCLI(append([]string{"seed"}, graphFlags()...)...)
			Expect(err).NotTo(HaveOccurred(), "seed command failed: %s", stderr)
			Expect(stdout).To(ContainSubstring(`Demo user "demo" ready`))
			Expect(stdout).To(ContainSubstring("Graph seeding complete!"))

			n := countNodes(`
				MATCH (u:User {username: $username})
				RETURN count(u) AS n
			`, map[string]any{"username": "demo"})
			Expect(n).To(Equal(int64(1)))

			visited := countNodes(`
				MATCH (:User {username: $username})-[:VISITED]->(c:City)
				RETURN count(c) AS n
			`, map[string]any{"username": "demo"})
			Expect(visited).To(Equal(int64(2)))

			prefs := countNodes(`
				MATCH (:User {username: $username})-[:HAS_PREFERENCE]->(p:Preference)
				RETURN count(p) AS n
			`, map[string]any{"username": "demo"})
			Expect(prefs).To(Equal(int64(2)))

			interests := countNodes(`
				MATCH (:User {username: $username})-[:INTERESTED_IN]->(i:Interest)
				RETURN count(i) AS n
			`, map[string]any{"username": "demo"})
			Expect(interests).To(Equal(int64(2)))
		})

		It("is idempotent (running twice creates no duplicates)", func() {
			_, stderr, err := runCLI(append([]string{"seed"}, graphFlags()...)...)
			Expect(err).NotTo(HaveOccurred(), "first seed failed: %s", stderr)

			_, stderr, err = runCLI(append([]string{"seed"}, graphFlags()...)...)
			Expect(err).NotTo(HaveOccurred(), "second seed failed: %s", stderr)

			cities := countNodes(`
				MATCH (c:City)
				RETURN count(c) AS n
			`, nil)
			Expect(cities).To(Equal(int64(2)), "cities are merged by name and country")

			visited := countNodes(`
				MATCH (:User {username: $username})-[:VISITED]->(c:City)
				RETURN count(c) AS n
			`, map[string]any{"username": "demo"})
			Expect(visited).To(Equal(int64(2)))
		})

		It("seeds a custom demo account", func() {
			args := append([]string{"seed", "--demo-user", "scout", "--demo-password", "trailmix"}, graphFlags()...)
			stdout, stderr, err := runCLI(args...)
			Expect(err).NotTo(HaveOccurred(), "seed command failed: %s", stderr)
			Expect(stdout).To(ContainSubstring(`Demo user "scout" ready`))

			visited := countNodes(`
				MATCH (:User {username: $username})-[:VISITED]->(c:City)
				RETURN count(c) AS n
			`, map[string]any{"username": "scout"})
			Expect(visited).To(Equal(int64(2)))
		})
	})

	Describe("Error handling", func() {
		It("fails fast on an unsupported graph URI scheme", func() {
			_, stderr, err := runCLI("seed", "--graph-uri", "invalid://nope", "--graph-password", "irrelevant")
			Expect(err).To(HaveOccurred())
			Expect(stderr).To(ContainSubstring("scheme"))
		})
	})
})
