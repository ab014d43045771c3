// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/tourmind/tourmind/internal/config"
	"github.com/tourmind/tourmind/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TourMind CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tourmind",
		Short: "TourMind - a travel assistant that remembers you",
		Long: `TourMind is a terminal travel assistant backed by a preference graph:
it remembers who you are, which cities you have visited and what you
like, and grounds its suggestions in that memory.`,
	}

	// Global flags for config file path and logging
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn or error)")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (json or text)")

	// Add subcommands
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewValidateFactsCmd())

	return cmd
}

// loadConfig resolves configuration from defaults, the config file and
// the command's flags, and installs the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logging.SetDefault("tourmind", version, logging.Options{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})
	return cfg, nil
}
