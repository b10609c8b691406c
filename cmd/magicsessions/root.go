// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/magicsessions/magicsessions/internal/xdg"
)

const serviceName = "magicsessions"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the magicsessions CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "magicsessions",
		Short: "MagicSessions - account and session authentication service",
		Long: `MagicSessions registers users, verifies email addresses, and issues
short-lived access tokens with rotating refresh tokens over a JSON HTTP API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// configPath returns the --config value, or the XDG default file when it exists.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	if path, ok := xdg.FindConfigFile(); ok {
		return path
	}
	return ""
}
