// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

//go:build integration

package integration

import (
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tourmind/tourmind/internal/auth"
	"github.com/tourmind/tourmind/internal/graph"
	"github.com/tourmind/tourmind/internal/memory"
	"github.com/tourmind/tourmind/internal/router"
	"github.com/tourmind/tourmind/internal/weather"
	"github.com/tourmind/tourmind/pkg/errutil"
)

var _ = Describe("Schema migrations", func() {
	newMigrator := func() *graph.Migrator {
		migrator, err := graph.NewMigrator(env.uri, "neo4j", graphPassword)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(migrator.Close()).To(Succeed())
		})
		return migrator
	}

	It("reports every embedded migration as applied", func() {
		migrator := newMigrator()

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(uint(2)))

		applied, err := migrator.AppliedMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(Equal([]uint{1, 2}))

		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})

	It("names migrations by their embedded files", func() {
		name, err := graph.MigrationName(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("000001_user_constraints"))

		name, err = graph.MigrationName(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("000002_fact_indexes"))

		name, err = graph.MigrationName(99)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(BeEmpty())
	})

	It("is idempotent", func() {
		migrator := newMigrator()

		Expect(migrator.Up()).To(Succeed())

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(uint(2)))
	})

	It("rolls back and reapplies cleanly", func() {
		migrator := newMigrator()

		Expect(migrator.Down()).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(0)))

		Expect(migrator.Up()).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(uint(2)))
	})
})

var _ = Describe("Account lifecycle", func() {
	It("signs up a user and validates the session", func() {
		username := uniqueUser("signup")

		token, err := env.auth.Signup(env.ctx, username, "hunter2")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).NotTo(BeEmpty())

		Expect(env.auth.ValidateSession(token)).To(BeTrue())
		owner, ok := env.auth.SessionUser(token)
		Expect(ok).To(BeTrue())
		Expect(owner).To(Equal(username))
	})

	It("rejects a wrong password", func() {
		username := uniqueUser("wrongpw")

		_, err := env.auth.Signup(env.ctx, username, "correct-horse")
		Expect(err).NotTo(HaveOccurred())

		_, err = env.auth.Login(env.ctx, username, "battery-staple")
		Expect(errutil.Code(err)).To(Equal("AUTH_INVALID_CREDENTIALS"))
	})

	It("rejects an unknown username with the same error code", func() {
		_, err := env.auth.Login(env.ctx, uniqueUser("nobody"), "whatever")
		Expect(errutil.Code(err)).To(Equal("AUTH_INVALID_CREDENTIALS"))
	})

	It("keeps the stored password when signing up an existing username", func() {
		username := uniqueUser("repeat")

		_, err := env.auth.Signup(env.ctx, username, "first-password")
		Expect(err).NotTo(HaveOccurred())

		// Registration is an upsert that never overwrites credentials, so
		// the second signup only logs in if the password still matches.
		_, err = env.auth.Signup(env.ctx, username, "second-password")
		Expect(errutil.Code(err)).To(Equal("AUTH_INVALID_CREDENTIALS"))

		token, err := env.auth.Signup(env.ctx, username, "first-password")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.auth.ValidateSession(token)).To(BeTrue())
	})

	It("revokes sessions on logout", func() {
		username := uniqueUser("logout")

		token, err := env.auth.Signup(env.ctx, username, "hunter2")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.auth.ValidateSession(token)).To(BeTrue())

		env.auth.Logout(token)
		Expect(env.auth.ValidateSession(token)).To(BeFalse())
		_, ok := env.auth.SessionUser(token)
		Expect(ok).To(BeFalse())

		// Revoking an already dead token is a no-op.
		env.auth.Logout(token)
	})

	It("keeps concurrent sessions independent", func() {
		username := uniqueUser("twotabs")

		first, err := env.auth.Signup(env.ctx, username, "s3cret")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.auth.ValidateSession(first)).To(BeTrue())

		_, err = env.auth.Login(env.ctx, username, "wrong")
		Expect(errutil.Code(err)).To(Equal("AUTH_INVALID_CREDENTIALS"))

		second, err := env.auth.Login(env.ctx, username, "s3cret")
		Expect(err).NotTo(HaveOccurred())
		Expect(second).NotTo(Equal(first))

		env.auth.Logout(first)
		Expect(env.auth.ValidateSession(first)).To(BeFalse())
		Expect(env.auth.ValidateSession(second)).To(BeTrue())
	})

	It("upgrades legacy password digests on login", func() {
		username := uniqueUser("legacy")

		legacyHasher, err := auth.NewHasher(auth.SchemeSHA256)
		Expect(err).NotTo(HaveOccurred())
		legacy := auth.NewCredentialStore(env.users, legacyHasher)
		Expect(legacy.Register(env.ctx, username, "old-password")).To(Succeed())

		stored, err := env.users.Get(env.ctx, username)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.PasswordHash).To(HaveLen(64), "sha256 digests are 64 hex chars")

		token, err := env.auth.Login(env.ctx, username, "old-password")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).NotTo(BeEmpty())

		rehashed, err := env.users.Get(env.ctx, username)
		Expect(err).NotTo(HaveOccurred())
		Expect(rehashed.PasswordHash).To(HavePrefix("$argon2id$"))
	})
})

var _ = Describe("Preference memory", func() {
	It("records free-text memories for a known user", func() {
		username := uniqueUser("wanda")

		_, err := env.auth.Signup(env.ctx, username, "hunter2")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.memories.RecordMemory(env.ctx, username, "planning a spring trip")).To(Succeed())

		result, err := neo4j.ExecuteQuery(env.ctx, env.driver, `
			MATCH (:User {username: $username})-[:REMEMBERS]->(m:Memory)
			RETURN m.text AS text
		`, map[string]any{"username": username}, neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(graph.DefaultDatabase))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Records).To(HaveLen(1))
	})

	It("refuses to record memories for unknown users", func() {
		err := env.memories.RecordMemory(env.ctx, uniqueUser("ghost"), "remember me")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, memory.ErrNotFound)).To(BeTrue())
		Expect(errutil.Code(err)).To(Equal("MEMORY_USER_NOT_FOUND"))
	})

	It("records parsed facts and reads them back in the snapshot", func() {
		username := uniqueUser("foodie")

		_, err := env.auth.Signup(env.ctx, username, "hunter2")
		Expect(err).NotTo(HaveOccurred())

		facts, err := memory.ParseFacts([]byte(`[{"text": "loves sushi"}, {"text": "avoids museums"}]`))
		Expect(err).NotTo(HaveOccurred())
		Expect(env.memories.RecordFacts(env.ctx, username, facts)).To(Succeed())

		snap, err := env.memories.Preferences(env.ctx, username)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Interests).To(HaveLen(2))
		Expect(snap.Interests).To(ContainElement(HaveKeyWithValue("text", "loves sushi")))
		Expect(snap.Interests).To(ContainElement(HaveKeyWithValue("text", "avoids museums")))
	})

	It("stores duplicate facts twice", func() {
		username := uniqueUser("twice")

		_, err := env.auth.Signup(env.ctx, username, "hunter2")
		Expect(err).NotTo(HaveOccurred())

		facts := []memory.Fact{{Text: "collects fridge magnets"}}
		Expect(env.memories.RecordFacts(env.ctx, username, facts)).To(Succeed())
		Expect(env.memories.RecordFacts(env.ctx, username, facts)).To(Succeed())

		snap, err := env.memories.Preferences(env.ctx, username)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Interests).To(HaveLen(2))
	})

	It("returns an empty snapshot rather than an error for unknown users", func() {
		snap, err := env.memories.Preferences(env.ctx, uniqueUser("nobody"))
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Empty()).To(BeTrue())
	})
})

var _ = Describe("Travel planning workflow", func() {
	It("carries a traveller from signup to a grounded weather answer", func() {
		username := uniqueUser("traveller")
		const question = "what's the weather like in Lisbon?"

		By("signing up a traveller account")
		token, err := env.auth.Signup(env.ctx, username, "wanderlust")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.auth.ValidateSession(token)).To(BeTrue())

		By("remembering the opening message")
		Expect(env.memories.RecordMemory(env.ctx, username, question)).To(Succeed())

		By("recording extracted preference facts")
		facts, err := memory.ParseFacts([]byte(`[{"text": "loves seafood"}, {"text": "prefers walking tours"}]`))
		Expect(err).NotTo(HaveOccurred())
		Expect(env.memories.RecordFacts(env.ctx, username, facts)).To(Succeed())

		By("marking Lisbon as visited")
		_, err = neo4j.ExecuteQuery(env.ctx, env.driver, `
			MATCH (u:User {username: $username})
			MERGE (c:City {name: $name, country: $country})
			ON CREATE SET c.id = $id
			MERGE (u)-[:VISITED]->(c)
		`, map[string]any{
			"username": username,
			"name":     "Lisbon",
			"country":  "Portugal",
			"id":       ulid.Make().String(),
		}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(graph.DefaultDatabase))
		Expect(err).NotTo(HaveOccurred())

		By("loading the preference snapshot")
		snap, err := env.memories.Preferences(env.ctx, username)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.VisitedCities).To(ContainElement(HaveKeyWithValue("name", "Lisbon")))
		Expect(snap.Interests).To(ContainElement(HaveKeyWithValue("text", "loves seafood")))

		By("routing the question to the weather handler")
		r, err := router.New()
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Route(question)).To(Equal(router.RouteWeather))

		By("assembling a prompt grounded in conditions and memory")
		cond := &weather.Conditions{City: "Lisbon", Temperature: 21.4, Description: "clear sky"}
		prompt := router.WeatherPrompt(question, "Lisbon", cond, snap)
		Expect(prompt).To(ContainSubstring("Weather in Lisbon:"))
		Expect(prompt).To(ContainSubstring("loves seafood"))
		Expect(prompt).To(ContainSubstring(question))

		By("logging out")
		env.auth.Logout(token)
		Expect(env.auth.ValidateSession(token)).To(BeFalse())
	})
})
