// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// MockNotifier is a mock type for the Notifier type
type MockNotifier struct {
	mock.Mock
}

// SendVerification provides a mock function with given fields: ctx, user, token, expiresAt
func (_m *MockNotifier) SendVerification(ctx context.Context, user *auth.User, token string, expiresAt time.Time) error {
	ret := _m.Called(ctx, user, token, expiresAt)

	if len(ret) == 0 {
		panic("no return value specified for SendVerification")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *auth.User, string, time.Time) error); ok {
		r0 = rf(ctx, user, token, expiresAt)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SendPasswordReset provides a mock function with given fields: ctx, user, token, expiresAt
func (_m *MockNotifier) SendPasswordReset(ctx context.Context, user *auth.User, token string, expiresAt time.Time) error {
	ret := _m.Called(ctx, user, token, expiresAt)

	if len(ret) == 0 {
		panic("no return value specified for SendPasswordReset")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *auth.User, string, time.Time) error); ok {
		r0 = rf(ctx, user, token, expiresAt)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockNotifier creates a new instance of MockNotifier. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	mock := &MockNotifier{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
