package testutil

import (
	"kgen/internal/ports"

	"github.com/stretchr/testify/mock"
)

type MockKustomizeClient struct {
	mock.Mock
}

func (m *MockKustomizeClient) Apply(manifests []byte, patches []ports.Patch, workDir string) ([]byte, error) {
	args := m.Called(manifests, patches, workDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
