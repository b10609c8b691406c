// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// MockTokenValidator is a mock type for the TokenValidator type
type MockTokenValidator struct {
	mock.Mock
}

// ValidateStructure provides a mock function with given fields: token
func (_m *MockTokenValidator) ValidateStructure(token string) *auth.Claims {
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

// NewMockTokenValidator creates a new instance of MockTokenValidator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTokenValidator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenValidator {
	mock := &MockTokenValidator{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
