package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Answer(ctx context.Context, contextText, question string) (string, error) {
	args := m.Called(ctx, contextText, question)
	return args.String(0), args.Error(1)
}

func (m *MockAnswerer) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAnswerer) Checkpoint() string {
	args := m.Called()
	return args.String(0)
}
