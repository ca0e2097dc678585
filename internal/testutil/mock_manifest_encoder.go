package testutil

import (
	"github.com/stretchr/testify/mock"
)

type MockManifestEncoder struct {
	mock.Mock
}

func (m *MockManifestEncoder) Encode(docs []map[string]interface{}, format string) ([]byte, error) {
	args := m.Called(docs, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockManifestEncoder) DecodeYAML(data []byte) ([]map[string]interface{}, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}
