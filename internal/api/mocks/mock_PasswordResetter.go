// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPasswordResetter is a mock type for the PasswordResetter type
type MockPasswordResetter struct {
	mock.Mock
}

// RequestReset provides a mock function with given fields: ctx, email
func (_m *MockPasswordResetter) RequestReset(ctx context.Context, email string) error {
	ret := _m.Called(ctx, email)

	if len(ret) == 0 {
		panic("no return value specified for RequestReset")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, email)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ResetPassword provides a mock function with given fields: ctx, token, newPassword
func (_m *MockPasswordResetter) ResetPassword(ctx context.Context, token string, newPassword string) error {
	ret := _m.Called(ctx, token, newPassword)

	if len(ret) == 0 {
		panic("no return value specified for ResetPassword")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, token, newPassword)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockPasswordResetter creates a new instance of MockPasswordResetter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockPasswordResetter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPasswordResetter {
	mock := &MockPasswordResetter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
