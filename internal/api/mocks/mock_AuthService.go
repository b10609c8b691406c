// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// MockAuthService is a mock type for the AuthService type
type MockAuthService struct {
	mock.Mock
}

// Register provides a mock function with given fields: ctx, in
func (_m *MockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*auth.RegisterResult, error) {
	ret := _m.Called(ctx, in)

	if len(ret) == 0 {
		panic("no return value specified for Register")
	}

	var r0 *auth.RegisterResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, auth.RegisterInput) (*auth.RegisterResult, error)); ok {
		return rf(ctx, in)
	}
	if rf, ok := ret.Get(0).(func(context.Context, auth.RegisterInput) *auth.RegisterResult); ok {
		r0 = rf(ctx, in)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.RegisterResult)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, auth.RegisterInput) error); ok {
		r1 = rf(ctx, in)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Login provides a mock function with given fields: ctx, in
func (_m *MockAuthService) Login(ctx context.Context, in auth.LoginInput) (*auth.AuthResult, error) {
	ret := _m.Called(ctx, in)

	if len(ret) == 0 {
		panic("no return value specified for Login")
	}

	var r0 *auth.AuthResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, auth.LoginInput) (*auth.AuthResult, error)); ok {
		return rf(ctx, in)
	}
	if rf, ok := ret.Get(0).(func(context.Context, auth.LoginInput) *auth.AuthResult); ok {
		r0 = rf(ctx, in)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.AuthResult)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, auth.LoginInput) error); ok {
		r1 = rf(ctx, in)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Refresh provides a mock function with given fields: ctx, rawToken
func (_m *MockAuthService) Refresh(ctx context.Context, rawToken string) (*auth.AuthResult, error) {
	ret := _m.Called(ctx, rawToken)

	if len(ret) == 0 {
		panic("no return value specified for Refresh")
	}

	var r0 *auth.AuthResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*auth.AuthResult, error)); ok {
		return rf(ctx, rawToken)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *auth.AuthResult); ok {
		r0 = rf(ctx, rawToken)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.AuthResult)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, rawToken)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Logout provides a mock function with given fields: ctx, rawToken
func (_m *MockAuthService) Logout(ctx context.Context, rawToken string) (*auth.Ack, error) {
	ret := _m.Called(ctx, rawToken)

	if len(ret) == 0 {
		panic("no return value specified for Logout")
	}

	var r0 *auth.Ack
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*auth.Ack, error)); ok {
		return rf(ctx, rawToken)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *auth.Ack); ok {
		r0 = rf(ctx, rawToken)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.Ack)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, rawToken)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// LogoutAll provides a mock function with given fields: ctx, userID
func (_m *MockAuthService) LogoutAll(ctx context.Context, userID ulid.ULID) (int64, error) {
	ret := _m.Called(ctx, userID)

	if len(ret) == 0 {
		panic("no return value specified for LogoutAll")
	}

	var r0 int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, ulid.ULID) (int64, error)); ok {
		return rf(ctx, userID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, ulid.ULID) int64); ok {
		r0 = rf(ctx, userID)
	} else {
		r0 = ret.Get(0).(int64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, ulid.ULID) error); ok {
		r1 = rf(ctx, userID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Sessions provides a mock function with given fields: ctx, userID
func (_m *MockAuthService) Sessions(ctx context.Context, userID ulid.ULID) ([]auth.SessionInfo, error) {
	ret := _m.Called(ctx, userID)

	if len(ret) == 0 {
		panic("no return value specified for Sessions")
	}

	var r0 []auth.SessionInfo
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, ulid.ULID) ([]auth.SessionInfo, error)); ok {
		return rf(ctx, userID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, ulid.ULID) []auth.SessionInfo); ok {
		r0 = rf(ctx, userID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]auth.SessionInfo)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, ulid.ULID) error); ok {
		r1 = rf(ctx, userID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// VerifyEmail provides a mock function with given fields: ctx, rawToken
func (_m *MockAuthService) VerifyEmail(ctx context.Context, rawToken string) (*auth.Ack, error) {
	ret := _m.Called(ctx, rawToken)

	if len(ret) == 0 {
		panic("no return value specified for VerifyEmail")
	}

	var r0 *auth.Ack
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*auth.Ack, error)); ok {
		return rf(ctx, rawToken)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *auth.Ack); ok {
		r0 = rf(ctx, rawToken)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.Ack)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, rawToken)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ResendVerification provides a mock function with given fields: ctx, email
func (_m *MockAuthService) ResendVerification(ctx context.Context, email string) (*auth.Ack, error) {
	ret := _m.Called(ctx, email)

	if len(ret) == 0 {
		panic("no return value specified for ResendVerification")
	}

	var r0 *auth.Ack
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*auth.Ack, error)); ok {
		return rf(ctx, email)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *auth.Ack); ok {
		r0 = rf(ctx, email)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.Ack)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, email)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CurrentUser provides a mock function with given fields: claims
func (_m *MockAuthService) CurrentUser(claims *auth.Claims) (*auth.CurrentUser, error) {
	ret := _m.Called(claims)

	if len(ret) == 0 {
		panic("no return value specified for CurrentUser")
	}

	var r0 *auth.CurrentUser
	var r1 error
	if rf, ok := ret.Get(0).(func(*auth.Claims) (*auth.CurrentUser, error)); ok {
		return rf(claims)
	}
	if rf, ok := ret.Get(0).(func(*auth.Claims) *auth.CurrentUser); ok {
		r0 = rf(claims)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.CurrentUser)
		}
	}

	if rf, ok := ret.Get(1).(func(*auth.Claims) error); ok {
		r1 = rf(claims)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockAuthService creates a new instance of MockAuthService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockAuthService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthService {
	mock := &MockAuthService{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
