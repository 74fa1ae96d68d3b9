package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"interview-assistant/internal/app"
	"interview-assistant/internal/assistant"
	"interview-assistant/internal/logger"
	"interview-assistant/internal/queue"
	"interview-assistant/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue) app.RecorderDeps {
	return app.RecorderDeps{Store: st, Queue: q, Log: logger.Discard()}
}

func recordTask(t *testing.T, userID string) (queue.Task, store.Exchange) {
	t.Helper()
	ex := store.Exchange{
		ID:        uuid.New(),
		UserID:    userID,
		Question:  "What is a mutex?",
		Points:    []string{"Guards shared state"},
		Topic:     "Operating Systems",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	task, err := queue.NewTask(queue.TaskTypeRecord, assistant.FromExchange(ex))
	require.NoError(t, err)
	return task, ex
}

func TestRecordHandler(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		setup   func(*store.MockStore, store.Exchange)
		wantErr bool
	}{
		{
			name:   "saves exchange",
			userID: "user-1",
			setup: func(s *store.MockStore, ex store.Exchange) {
				s.On("SaveExchange", mock.Anything, mock.MatchedBy(func(got store.Exchange) bool {
					return got.ID == ex.ID && got.UserID == "user-1" && got.Question == ex.Question
				})).Return(ex, nil).Once()
			},
		},
		{
			name:   "store failure is returned for retry",
			userID: "user-1",
			setup: func(s *store.MockStore, ex store.Exchange) {
				s.On("SaveExchange", mock.Anything, mock.Anything).Return(store.Exchange{}, errors.New("db down")).Once()
			},
			wantErr: true,
		},
		{
			name:    "task without user is rejected",
			userID:  "",
			setup:   func(*store.MockStore, store.Exchange) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(store.MockStore)
			task, ex := recordTask(t, tt.userID)
			tt.setup(s, ex)

			err := recordHandler(newTestDeps(s, nil))(context.Background(), task)
			if (err != nil) != tt.wantErr {
				t.Fatalf("recordHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
			s.AssertExpectations(t)
		})
	}
}

func TestRecordHandlerBadPayload(t *testing.T) {
	s := new(store.MockStore)
	task := queue.Task{ID: uuid.New(), Type: queue.TaskTypeRecord, Payload: []byte("{not json")}

	err := recordHandler(newTestDeps(s, nil))(context.Background(), task)
	assert.Error(t, err)
	s.AssertNotCalled(t, "SaveExchange", mock.Anything, mock.Anything)
}

func TestRunDeliversTasks(t *testing.T) {
	s := new(store.MockStore)
	task, ex := recordTask(t, "user-7")
	s.On("SaveExchange", mock.Anything, mock.Anything).Return(ex, nil).Once()

	q := &queue.MockQueue{Deliveries: []queue.Task{task}}
	q.On("Worker", mock.Anything, queue.TaskTypeRecord).Return(nil).Once()

	err := run(context.Background(), newTestDeps(s, q), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.Len(t, q.HandlerErrs, 1)
	assert.NoError(t, q.HandlerErrs[0])
	q.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestRunStopsOnHealthFailure(t *testing.T) {
	q := new(queue.MockQueue)
	q.On("Worker", mock.Anything, queue.TaskTypeRecord).Return(nil)

	healthErr := errors.New("port in use")
	err := run(context.Background(), newTestDeps(new(store.MockStore), q), func(context.Context) error {
		return healthErr
	})
	assert.ErrorIs(t, err, healthErr)
}
