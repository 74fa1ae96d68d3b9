package queue

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockQueue is a mock implementation of Queue using testify/mock.
//
// Worker feeds every task in Deliveries to the handler before returning the
// mocked error, and keeps each handler result in HandlerErrs.
type MockQueue struct {
	mock.Mock

	Deliveries []Task

	mu          sync.Mutex
	HandlerErrs []error
}

func (m *MockQueue) Enqueue(ctx context.Context, task Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	for _, task := range m.Deliveries {
		if task.Type != taskType {
			continue
		}
		err := handler(ctx, task)
		m.mu.Lock()
		m.HandlerErrs = append(m.HandlerErrs, err)
		m.mu.Unlock()
	}
	args := m.Called(ctx, taskType)
	return args.Error(0)
}
