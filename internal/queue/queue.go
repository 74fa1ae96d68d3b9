package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"interview-assistant/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

// TaskTypeRecord asks the recorder worker to persist an answered question.
const TaskTypeRecord TaskType = "record"

// Task represents a unit of work handed from the server to a worker.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// NewTask builds a task of type t whose payload is v encoded as JSON.
func NewTask(t TaskType, v any) (Task, error) {
	if t == "" {
		return Task{}, errors.New("task type required")
	}
	body, err := json.Marshal(v)
	if err != nil {
		return Task{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Task{ID: uuid.New(), Type: t, Payload: body}, nil
}

// Decode unmarshals the task payload into v.
func (t Task) Decode(v any) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	return retry.Do(ctx, retry.Policy{MaxRetries: attempts - 1, Base: base}, func(ctx context.Context) error {
		return q.Enqueue(ctx, task)
	})
}
