package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"interview-assistant/internal/queue"
	"interview-assistant/internal/store"
)

// Recorder persists an answered exchange, directly or through a worker.
type Recorder interface {
	Record(ctx context.Context, ex store.Exchange) error
}

// StoreRecorder saves exchanges synchronously.
type StoreRecorder struct {
	Store store.Store
}

func (r StoreRecorder) Record(ctx context.Context, ex store.Exchange) error {
	_, err := r.Store.SaveExchange(ctx, ex)
	return err
}

// QueueRecorder hands exchanges to the recorder worker as record tasks.
type QueueRecorder struct {
	Queue    queue.Queue
	Attempts int
	Base     time.Duration
}

func (r QueueRecorder) Record(ctx context.Context, ex store.Exchange) error {
	task, err := queue.NewTask(queue.TaskTypeRecord, FromExchange(ex))
	if err != nil {
		return err
	}
	attempts, base := r.Attempts, r.Base
	if attempts <= 0 {
		attempts = 3
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if err := queue.EnqueueWithRetry(ctx, r.Queue, task, attempts, base); err != nil {
		return fmt.Errorf("enqueue record task: %w", err)
	}
	return nil
}

// RecordPayload is the wire form of a record task.
type RecordPayload struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Question  string    `json:"question"`
	Points    []string  `json:"points"`
	Topic     string    `json:"topic"`
	Language  string    `json:"language,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromExchange(ex store.Exchange) RecordPayload {
	return RecordPayload{
		ID:        ex.ID,
		UserID:    ex.UserID,
		Question:  ex.Question,
		Points:    ex.Points,
		Topic:     ex.Topic,
		Language:  ex.Language,
		Snippet:   ex.Snippet,
		CreatedAt: ex.CreatedAt,
	}
}

func (p RecordPayload) Exchange() store.Exchange {
	return store.Exchange{
		ID:        p.ID,
		UserID:    p.UserID,
		Question:  p.Question,
		Points:    p.Points,
		Topic:     p.Topic,
		Language:  p.Language,
		Snippet:   p.Snippet,
		CreatedAt: p.CreatedAt,
	}
}

// RecordHandler consumes record tasks into st. Saving is idempotent on the
// exchange ID, so redelivered tasks do not duplicate history.
func RecordHandler(st store.Store) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var payload RecordPayload
		if err := task.Decode(&payload); err != nil {
			return err
		}
		if payload.UserID == "" {
			return fmt.Errorf("record task %s has no user", task.ID)
		}
		_, err := st.SaveExchange(ctx, payload.Exchange())
		return err
	}
}
