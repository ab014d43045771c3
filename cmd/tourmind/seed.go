// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tourmind/tourmind/internal/auth"
	authneo4j "github.com/tourmind/tourmind/internal/auth/neo4j"
	"github.com/tourmind/tourmind/internal/config"
	"github.com/tourmind/tourmind/internal/graph"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout  time.Duration
	username string
	password string
}

// The demo dataset. MERGE keeps reruns from duplicating nodes; ids are
// assigned on first create only.
var (
	seedCities = []struct {
		name    string
		country string
	}{
		{name: "Lisbon", country: "Portugal"},
		{name: "Tokyo", country: "Japan"},
	}
	seedPreferences = []struct {
		category string
		value    string
	}{
		{category: "food", value: "vegetarian"},
		{category: "pace", value: "relaxed"},
	}
	seedInterests = []string{"likes hiking", "prefers trains"}
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	scfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the graph with a demo user",
		Long: `Creates a demo user with sample visited cities, preferences and
interests. This command is idempotent - it will not create duplicates
if run multiple times.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSeed(cfg, scfg, cmd)
		},
	}

	cmd.Flags().DurationVar(&scfg.timeout, "timeout", defaultSeedTimeout, "timeout for graph operations (e.g., 30s, 1m)")
	cmd.Flags().StringVar(&scfg.username, "demo-user", "demo", "username for the demo account")
	cmd.Flags().StringVar(&scfg.password, "demo-password", "wanderlust", "password for the demo account")
	cmd.Flags().String("graph-uri", config.DefaultGraphURI, "graph bolt URI")
	cmd.Flags().String("graph-username", config.DefaultGraphUser, "graph username")
	cmd.Flags().String("graph-password", "", "graph password")
	cmd.Flags().String("graph-database", "", "graph database name (empty = server default)")

	return cmd
}

func runSeed(cfg *config.Config, scfg *seedConfig, cmd *cobra.Command) error {
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), scfg.timeout)
	defer cancel()

	cmd.Println("Connecting to graph...")
	driver, err := graph.Connect(ctx, cfg.Graph)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := driver.Close(context.Background()); closeErr != nil {
			slog.Debug("error closing graph driver", "error", closeErr)
		}
	}()

	cmd.Println("Running migrations...")
	migrator, err := graph.NewMigrator(cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password)
	if err != nil {
		return err
	}
	migrateErr := migrator.Up()
	if closeErr := migrator.Close(); closeErr != nil {
		slog.Warn("error closing migrator", "error", closeErr)
	}
	if migrateErr != nil {
		return migrateErr
	}

	database := cfg.Graph.DatabaseName()

	// Register the demo user. An existing account keeps its password.
	hasher, err := auth.NewHasher(auth.SchemeArgon2id)
	if err != nil {
		return err
	}
	credentials := auth.NewCredentialStore(authneo4j.NewUserStore(driver, database), hasher)
	if err := credentials.Register(ctx, scfg.username, scfg.password); err != nil {
		return oops.Code("SEED_FAILED").
			With("operation", "register demo user").
			With("username", scfg.username).
			Wrap(err)
	}
	cmd.Printf("Demo user %q ready\n", scfg.username)

	for _, city := range seedCities {
		_, err := neo4j.ExecuteQuery(ctx, driver, `
			MATCH (u:User {username: $username})
			MERGE (c:City {name: $name, country: $country})
			ON CREATE SET c.id = $id
			MERGE (u)-[:VISITED]->(c)
		`, map[string]any{
			"username": scfg.username,
			"name":     city.name,
			"country":  city.country,
			"id":       ulid.Make().String(),
		}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
		if err != nil {
			return oops.Code("SEED_FAILED").
				With("operation", "seed city").
				With("city", city.name).
				Wrap(err)
		}
	}

	for _, pref := range seedPreferences {
		_, err := neo4j.ExecuteQuery(ctx, driver, `
			MATCH (u:User {username: $username})
			MERGE (p:Preference {category: $category, value: $value})
			ON CREATE SET p.id = $id
			MERGE (u)-[:HAS_PREFERENCE]->(p)
		`, map[string]any{
			"username": scfg.username,
			"category": pref.category,
			"value":    pref.value,
			"id":       ulid.Make().String(),
		}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
		if err != nil {
			return oops.Code("SEED_FAILED").
				With("operation", "seed preference").
				With("category", pref.category).
				Wrap(err)
		}
	}

	for _, interest := range seedInterests {
		_, err := neo4j.ExecuteQuery(ctx, driver, `
			MATCH (u:User {username: $username})
			MERGE (i:Interest {text: $text})
			ON CREATE SET i.id = $id
			MERGE (u)-[:INTERESTED_IN]->(i)
		`, map[string]any{
			"username": scfg.username,
			"text":     interest,
			"id":       ulid.Make().String(),
		}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
		if err != nil {
			return oops.Code("SEED_FAILED").
				With("operation", "seed interest").
				With("interest", interest).
				Wrap(err)
		}
	}

	slog.Info("seeded demo data",
		"username", scfg.username,
		"cities", len(seedCities),
		"preferences", len(seedPreferences),
		"interests", len(seedInterests),
	)
	cmd.Println("Graph seeding complete!")
	return nil
}
