// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tourmind/tourmind/internal/config"
	"github.com/tourmind/tourmind/internal/graph"
)

// migrateConfig holds configuration for the migrate command.
type migrateConfig struct {
	down  bool
	steps int
	force string
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	mcfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run graph schema migrations",
		Long: `Apply the embedded Cypher migrations to the graph database.
By default all pending migrations run; --steps applies a fixed number,
--down rolls everything back and --force recovers a dirty schema by
setting the version without running migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runMigrate(cfg, mcfg, cmd)
		},
	}

	cmd.Flags().BoolVar(&mcfg.down, "down", false, "roll back all migrations")
	cmd.Flags().IntVar(&mcfg.steps, "steps", 0, "apply exactly n migrations (negative rolls back)")
	cmd.Flags().StringVar(&mcfg.force, "force", "", "force the schema version without running migrations")
	cmd.Flags().String("graph-uri", config.DefaultGraphURI, "graph bolt URI")
	cmd.Flags().String("graph-username", config.DefaultGraphUser, "graph username")
	cmd.Flags().String("graph-password", "", "graph password")

	return cmd
}

// parseForceVersion parses the --force value. Sscanf semantics: leading
// whitespace is skipped and parsing stops at the first non-digit.
func parseForceVersion(input string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(input, "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").
			With("input", input).
			Wrapf(err, "parse force version")
	}
	return version, nil
}

func runMigrate(cfg *config.Config, mcfg *migrateConfig, cmd *cobra.Command) error {
	modes := 0
	for _, set := range []bool{mcfg.down, mcfg.steps != 0, mcfg.force != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return oops.Code("CONFIG_INVALID").Errorf("--down, --steps and --force are mutually exclusive")
	}

	// Validate before touching the graph so a typo fails fast.
	forceVersion := 0
	if mcfg.force != "" {
		var err error
		forceVersion, err = parseForceVersion(mcfg.force)
		if err != nil {
			return err
		}
	}

	migrator, err := graph.NewMigrator(cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
	}()

	switch {
	case mcfg.force != "":
		cmd.Printf("Forcing schema version %d...\n", forceVersion)
		err = migrator.Force(forceVersion)
	case mcfg.down:
		applied, appliedErr := migrator.AppliedMigrations()
		if appliedErr != nil {
			return appliedErr
		}
		cmd.Printf("Rolling back %d applied migrations...\n", len(applied))
		err = migrator.Down()
	case mcfg.steps != 0:
		cmd.Printf("Applying %d migration steps...\n", mcfg.steps)
		err = migrator.Steps(mcfg.steps)
	default:
		err = runMigrateUp(migrator, cmd)
	}
	if err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	switch {
	case dirty:
		cmd.Printf("Schema version %d (dirty - fix manually and force a version)\n", version)
	case version == 0:
		cmd.Println("Schema is empty")
	default:
		cmd.Printf("Schema at version %d\n", version)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

// runMigrateUp lists the pending migrations by name, then applies them.
func runMigrateUp(migrator *graph.Migrator, cmd *cobra.Command) error {
	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}

	cmd.Printf("Applying %d pending migrations:\n", len(pending))
	for _, version := range pending {
		name, nameErr := graph.MigrationName(version)
		if nameErr != nil || name == "" {
			name = fmt.Sprintf("%06d", version)
		}
		cmd.Println("  " + name)
	}

	return migrator.Up()
}
