// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired tokens are purged.
const DefaultSweepInterval = time.Hour

// SweepResult counts the rows removed by one sweep.
type SweepResult struct {
	RefreshTokens      int64
	VerificationTokens int64
	ResetTokens        int64
}

// Total returns the number of rows removed across all tables.
func (r SweepResult) Total() int64 {
	return r.RefreshTokens + r.VerificationTokens + r.ResetTokens
}

// SweepRecorder receives the number of rows removed per token kind.
type SweepRecorder interface {
	RecordSweep(kind string, removed int64)
}

// Sweeper periodically deletes expired refresh, verification and reset tokens.
type Sweeper struct {
	refreshTokens RefreshTokenRepository
	verifications VerificationTokenRepository
	resets        PasswordResetRepository
	interval      time.Duration
	recorder      SweepRecorder
	logger        *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepInterval sets the sweep period. Non-positive values are ignored.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweepRecorder reports removed row counts.
func WithSweepRecorder(r SweepRecorder) SweeperOption {
	return func(s *Sweeper) {
		s.recorder = r
	}
}

// WithSweeperLogger sets the logger.
func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSweeper creates a Sweeper. The reset repository may be nil when
// password reset is not in use.
func NewSweeper(
	refreshTokens RefreshTokenRepository,
	verifications VerificationTokenRepository,
	resets PasswordResetRepository,
	opts ...SweeperOption,
) *Sweeper {
	s := &Sweeper{
		refreshTokens: refreshTokens,
		verifications: verifications,
		resets:        resets,
		interval:      DefaultSweepInterval,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce runs a single purge. Every table is attempted even if an
// earlier one fails; errors are joined.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var (
		result SweepResult
		errs   []error
	)

	if s.refreshTokens != nil {
		n, err := s.refreshTokens.DeleteExpired(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "delete expired refresh tokens failed", "error", err)
			errs = append(errs, err)
		}
		result.RefreshTokens = n
		s.record("refresh", n)
	}

	if s.verifications != nil {
		n, err := s.verifications.DeleteExpired(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "delete expired verification tokens failed", "error", err)
			errs = append(errs, err)
		}
		result.VerificationTokens = n
		s.record("verification", n)
	}

	if s.resets != nil {
		n, err := s.resets.DeleteExpired(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "delete expired reset tokens failed", "error", err)
			errs = append(errs, err)
		}
		result.ResetTokens = n
		s.record("password_reset", n)
	}

	if total := result.Total(); total > 0 {
		s.logger.InfoContext(ctx, "expired tokens purged",
			"refresh", result.RefreshTokens,
			"verification", result.VerificationTokens,
			"password_reset", result.ResetTokens)
	}

	return result, errors.Join(errs...)
}

// Start begins periodic sweeping. A first sweep runs immediately.
// Calling Start on a running Sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the sweeper and waits for the current sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, "token sweep failed", "error", err)
	}
}

func (s *Sweeper) record(kind string, n int64) {
	if s.recorder != nil {
		s.recorder.RecordSweep(kind, n)
	}
}
