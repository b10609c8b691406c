// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/magicsessions/magicsessions/internal/config"
)

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect server configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration is complete and valid",
		Long: `Load the configuration file given with --config, apply environment
fallbacks, and report any problem that would stop serve from starting.`,
		Args: cobra.NoArgs,
		RunE: runConfigValidate,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the configuration file JSON Schema",
		Args:  cobra.NoArgs,
		RunE:  runConfigSchema,
	})

	return cmd
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(), nil)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cmd.Println("configuration is valid")
	return nil
}

func runConfigSchema(cmd *cobra.Command, _ []string) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return err
	}
	cmd.Println(string(schema))
	return nil
}
