// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tourmind/tourmind/internal/memory"
)

// NewValidateFactsCmd creates the validate-facts subcommand.
func NewValidateFactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-facts <file>",
		Short: "Validate a facts JSON file against the schema",
		Long: `Validates a JSON batch of preference facts against the facts schema.
Does NOT require a graph connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch malformed fact batches early:
  tourmind validate-facts facts.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateFacts(cmd, args[0])
		},
	}
}

func runValidateFacts(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("FACTS_SCHEMA_INVALID").
			With("path", path).
			Wrapf(err, "read facts file")
	}

	facts, err := memory.ParseFacts(data)
	if err != nil {
		return err
	}

	cmd.Printf("%s: %d facts valid\n", path, len(facts))
	return nil
}
