// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/order-guard/internal/guard/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

// Process mocks the Process method of UseCase.
func (m *MockUseCase) Process(ctx context.Context, rawPayload []byte) usecase.Outcome {
	args := m.Called(ctx, rawPayload)
	return args.Get(0).(usecase.Outcome)
}
