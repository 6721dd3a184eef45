package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockQAService struct {
	mock.Mock
}

func (m *MockQAService) ExtractContext(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockQAService) Answer(ctx context.Context, contextText, question string) (string, error) {
	args := m.Called(ctx, contextText, question)
	return args.String(0), args.Error(1)
}

func (m *MockQAService) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockQAService) Checkpoint() string {
	args := m.Called()
	return args.String(0)
}
