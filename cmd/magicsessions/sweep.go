// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/internal/config"
	"github.com/magicsessions/magicsessions/internal/logging"
	"github.com/magicsessions/magicsessions/internal/observability"
	"github.com/magicsessions/magicsessions/internal/store"
)

// sweepPoolFactory opens the pool used by the sweep command.
var sweepPoolFactory = func(ctx context.Context, cfg store.PoolConfig) (Pool, error) {
	pool, err := store.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Purge expired tokens once",
		Long: `Delete expired refresh, email verification, and password reset tokens
and exit. Useful from cron when serve runs with a long sweep interval.`,
		RunE: runSweep,
	}
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (default $"+config.EnvDatabaseURL+")")
	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(), cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	logger := logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.Log.Level)

	pool, err := sweepPoolFactory(cmd.Context(), poolConfig(cfg.Database))
	if err != nil {
		return err
	}
	defer pool.Close()

	sweeper := newSweeper(newRepositories(pool), cfg, observability.NewMetrics(prometheus.NewRegistry()), logger)
	result, err := sweeper.SweepOnce(cmd.Context())
	printSweepResult(cmd, result)
	return err
}

func printSweepResult(cmd *cobra.Command, r auth.SweepResult) {
	cmd.Printf("Removed %d expired token(s): %d refresh, %d verification, %d password reset\n",
		r.Total(), r.RefreshTokens, r.VerificationTokens, r.ResetTokens)
}
