package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrExchangeNotFound is returned when an exchange does not exist or belongs
// to another user.
var ErrExchangeNotFound = errors.New("exchange not found")

// Exchange is one answered question recorded for a user.
type Exchange struct {
	ID        uuid.UUID
	UserID    string
	Question  string
	Points    []string
	Topic     string
	Language  string
	Snippet   string
	CreatedAt time.Time
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	// SaveExchange inserts ex, assigning ID and CreatedAt when they are zero.
	SaveExchange(ctx context.Context, ex Exchange) (Exchange, error)
	// ListExchanges returns up to limit exchanges of userID, newest first.
	ListExchanges(ctx context.Context, userID string, limit int) ([]Exchange, error)
	GetExchange(ctx context.Context, userID string, id uuid.UUID) (Exchange, error)
	DeleteExchange(ctx context.Context, userID string, id uuid.UUID) error
	// DeleteAllExchanges removes every exchange of userID and reports how many.
	DeleteAllExchanges(ctx context.Context, userID string) (int64, error)
	Close() error
}

// prepare fills the generated fields of a new exchange.
func prepare(ex Exchange) (Exchange, error) {
	if ex.UserID == "" {
		return Exchange{}, errors.New("exchange requires a user id")
	}
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}
	// Postgres keeps microseconds.
	ex.CreatedAt = ex.CreatedAt.UTC().Truncate(time.Microsecond)
	if ex.Points == nil {
		ex.Points = []string{}
	}
	return ex, nil
}
