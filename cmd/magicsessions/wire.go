// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package main

import (
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/magicsessions/magicsessions/internal/api"
	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/internal/auth/postgres"
	"github.com/magicsessions/magicsessions/internal/config"
	"github.com/magicsessions/magicsessions/internal/observability"
	"github.com/magicsessions/magicsessions/internal/store"
)

// components is the assembled application graph.
type components struct {
	service *auth.Service
	resets  *auth.PasswordResetService
	sweeper *auth.Sweeper
	router  http.Handler
}

// repositories are the PostgreSQL-backed stores shared by the services.
type repositories struct {
	users         *postgres.UserRepository
	refreshTokens *postgres.RefreshTokenRepository
	verifications *postgres.VerificationTokenRepository
	resets        *postgres.PasswordResetRepository
}

func newRepositories(db store.Querier) repositories {
	return repositories{
		users:         postgres.NewUserRepository(db),
		refreshTokens: postgres.NewRefreshTokenRepository(db),
		verifications: postgres.NewVerificationTokenRepository(db),
		resets:        postgres.NewPasswordResetRepository(db),
	}
}

func newSweeper(repos repositories, cfg *config.Config, recorder auth.SweepRecorder, logger *slog.Logger) *auth.Sweeper {
	return auth.NewSweeper(repos.refreshTokens, repos.verifications, repos.resets,
		auth.WithSweepInterval(cfg.Auth.SweepInterval),
		auth.WithSweepRecorder(recorder),
		auth.WithSweeperLogger(logger))
}

// buildComponents wires repositories, services, and the HTTP router.
func buildComponents(cfg *config.Config, db store.Querier, metrics *observability.Metrics, logger *slog.Logger) (*components, error) {
	repos := newRepositories(db)
	hasher := auth.NewBcryptHasher()

	issuer, err := auth.NewJWTIssuer(cfg.IssuerConfig())
	if err != nil {
		return nil, oops.With("component", "jwt issuer").Wrap(err)
	}

	blocklist, err := auth.NewEmailDomainBlocklist(cfg.Auth.BlockedEmailDomains)
	if err != nil {
		return nil, oops.With("component", "email domain blocklist").Wrap(err)
	}

	notifier := auth.NewLogNotifier(logger)

	svc, err := auth.NewService(repos.users, repos.refreshTokens, repos.verifications, hasher, issuer,
		auth.WithLogger(logger),
		auth.WithNotifier(notifier),
		auth.WithMetrics(metrics),
		auth.WithLockoutPolicy(cfg.LockoutPolicy()),
		auth.WithEmailDomainBlocklist(blocklist))
	if err != nil {
		return nil, oops.With("component", "auth service").Wrap(err)
	}

	resets, err := auth.NewPasswordResetService(repos.users, repos.resets, repos.refreshTokens, hasher,
		auth.WithResetNotifier(notifier),
		auth.WithResetLogger(logger))
	if err != nil {
		return nil, oops.With("component", "password reset service").Wrap(err)
	}

	handler, err := api.NewHandler(svc, issuer,
		api.WithHandlerLogger(logger),
		api.WithPasswordReset(resets))
	if err != nil {
		return nil, oops.With("component", "api handler").Wrap(err)
	}

	return &components{
		service: svc,
		resets:  resets,
		sweeper: newSweeper(repos, cfg, metrics, logger),
		router:  api.NewRouter(handler, metrics.Middleware),
	}, nil
}

func poolConfig(db config.DatabaseConfig) store.PoolConfig {
	return store.PoolConfig{
		URL:             db.URL,
		MaxConns:        db.MaxConns,
		MinConns:        db.MinConns,
		MaxConnLifetime: db.MaxConnLifetime,
		ConnectRetries:  db.ConnectRetries,
	}
}
