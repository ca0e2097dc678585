package testutil

import (
	"github.com/stretchr/testify/mock"
)

// MockKubeContext provides a testify mock for ports.KubeContext
type MockKubeContext struct {
	mock.Mock
}

func (m *MockKubeContext) CurrentContext() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockKubeContext) CurrentNamespace() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
