package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveExchange(ctx context.Context, ex Exchange) (Exchange, error) {
	args := m.Called(ctx, ex)
	return args.Get(0).(Exchange), args.Error(1)
}

func (m *MockStore) ListExchanges(ctx context.Context, userID string, limit int) ([]Exchange, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Exchange), args.Error(1)
}

func (m *MockStore) GetExchange(ctx context.Context, userID string, id uuid.UUID) (Exchange, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(Exchange), args.Error(1)
}

func (m *MockStore) DeleteExchange(ctx context.Context, userID string, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockStore) DeleteAllExchanges(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
