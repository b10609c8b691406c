// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// MockTokenIssuer is a mock type for the TokenIssuer type
type MockTokenIssuer struct {
	mock.Mock
}

// IssueAccessToken provides a mock function with given fields: user
func (_m *MockTokenIssuer) IssueAccessToken(user *auth.User) (string, error) {
	ret := _m.Called(user)

	if len(ret) == 0 {
		panic("no return value specified for IssueAccessToken")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(*auth.User) (string, error)); ok {
		return rf(user)
	}
	if rf, ok := ret.Get(0).(func(*auth.User) string); ok {
		r0 = rf(user)
	} else {
		r0 = ret.String(0)
	}

	if rf, ok := ret.Get(1).(func(*auth.User) error); ok {
		r1 = rf(user)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// IssueRefreshToken provides a mock function with given fields: 
func (_m *MockTokenIssuer) IssueRefreshToken() (string, error) {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for IssueRefreshToken")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func() (string, error)); ok {
		return rf()
	}
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.String(0)
	}

	if rf, ok := ret.Get(1).(func() error); ok {
		r1 = rf()
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AccessTokenExpiry provides a mock function with given fields: 
func (_m *MockTokenIssuer) AccessTokenExpiry() time.Time {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for AccessTokenExpiry")
	}

	var r0 time.Time
	if rf, ok := ret.Get(0).(func() time.Time); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(time.Time)
	}

	return r0
}

// RefreshTokenExpiry provides a mock function with given fields: 
func (_m *MockTokenIssuer) RefreshTokenExpiry() time.Time {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for RefreshTokenExpiry")
	}

	var r0 time.Time
	if rf, ok := ret.Get(0).(func() time.Time); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(time.Time)
	}

	return r0
}

// ValidateStructure provides a mock function with given fields: token
func (_m *MockTokenIssuer) ValidateStructure(token string) *auth.Claims {
	ret := _m.Called(token)

	if len(ret) == 0 {
		panic("no return value specified for ValidateStructure")
	}

	var r0 *auth.Claims
	if rf, ok := ret.Get(0).(func(string) *auth.Claims); ok {
		r0 = rf(token)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*auth.Claims)
		}
	}

	return r0
}

// NewMockTokenIssuer creates a new instance of MockTokenIssuer. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTokenIssuer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenIssuer {
	mock := &MockTokenIssuer{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
