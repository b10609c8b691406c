// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/internal/auth/mocks"
)

type sweepCounts struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *sweepCounts) RecordSweep(kind string, removed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[kind] += removed
}

func TestSweeper_SweepOnce(t *testing.T) {
	refresh := mocks.NewMockRefreshTokenRepository(t)
	verifications := mocks.NewMockVerificationTokenRepository(t)
	resets := mocks.NewMockPasswordResetRepository(t)
	recorder := &sweepCounts{}

	refresh.On("DeleteExpired", mock.Anything).Return(int64(4), nil)
	verifications.On("DeleteExpired", mock.Anything).Return(int64(2), nil)
	resets.On("DeleteExpired", mock.Anything).Return(int64(1), nil)

	sweeper := auth.NewSweeper(refresh, verifications, resets, auth.WithSweepRecorder(recorder))
	result, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, auth.SweepResult{RefreshTokens: 4, VerificationTokens: 2, ResetTokens: 1}, result)
	assert.Equal(t, int64(7), result.Total())
	assert.Equal(t, map[string]int64{"refresh": 4, "verification": 2, "password_reset": 1}, recorder.counts)
}

func TestSweeper_SweepOnceContinuesAfterError(t *testing.T) {
	refresh := mocks.NewMockRefreshTokenRepository(t)
	verifications := mocks.NewMockVerificationTokenRepository(t)

	refresh.On("DeleteExpired", mock.Anything).Return(int64(0), errors.New("db down"))
	verifications.On("DeleteExpired", mock.Anything).Return(int64(3), nil)

	sweeper := auth.NewSweeper(refresh, verifications, nil)
	result, err := sweeper.SweepOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, int64(3), result.VerificationTokens)
}

func TestSweeper_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	refresh := mocks.NewMockRefreshTokenRepository(t)
	verifications := mocks.NewMockVerificationTokenRepository(t)

	swept := make(chan struct{}, 16)
	refresh.On("DeleteExpired", mock.Anything).Return(int64(0), nil)
	verifications.On("DeleteExpired", mock.Anything).Run(func(mock.Arguments) {
		select {
		case swept <- struct{}{}:
		default:
		}
	}).Return(int64(0), nil)

	sweeper := auth.NewSweeper(refresh, verifications, nil, auth.WithSweepInterval(10*time.Millisecond))
	sweeper.Start(context.Background())
	sweeper.Start(context.Background())

	for range 2 {
		select {
		case <-swept:
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper did not run")
		}
	}

	sweeper.Stop()
	sweeper.Stop()
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	refresh := mocks.NewMockRefreshTokenRepository(t)
	refresh.On("DeleteExpired", mock.Anything).Return(int64(0), nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	sweeper := auth.NewSweeper(refresh, nil, nil, auth.WithSweepInterval(time.Hour))
	sweeper.Start(ctx)
	cancel()
	sweeper.Stop()
}
