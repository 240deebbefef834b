package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sectrean/inject-kit/internal/testtypes"
)

// InterfaceAMock is a mock for testtypes.InterfaceA.
type InterfaceAMock struct {
	mock.Mock
}

// NewInterfaceAMock creates a mock that asserts its expectations when the test ends.
func NewInterfaceAMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *InterfaceAMock {
	m := &InterfaceAMock{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *InterfaceAMock) A() {
	m.Called()
}

func (m *InterfaceAMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ testtypes.InterfaceA = (*InterfaceAMock)(nil)

// InterfaceBMock is a mock for testtypes.InterfaceB.
type InterfaceBMock struct {
	mock.Mock
}

// NewInterfaceBMock creates a mock that asserts its expectations when the test ends.
func NewInterfaceBMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *InterfaceBMock {
	m := &InterfaceBMock{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *InterfaceBMock) B() {
	m.Called()
}

func (m *InterfaceBMock) Close(ctx context.Context) {
	m.Called(ctx)
}

var _ testtypes.InterfaceB = (*InterfaceBMock)(nil)
