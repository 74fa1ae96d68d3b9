package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrationLockID is the advisory lock that keeps the server and the recorder
// from migrating at the same time.
const migrationLockID = 734120551

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory locks belong to a session, so lock, DDL and unlock share one connection.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			question TEXT NOT NULL,
			points TEXT[] NOT NULL DEFAULT '{}',
			topic TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			snippet TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS exchanges_user_created_idx ON exchanges (user_id, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SaveExchange(ctx context.Context, ex Exchange) (Exchange, error) {
	ex, err := prepare(ex)
	if err != nil {
		return Exchange{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exchanges(id, user_id, question, points, topic, language, snippet, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO NOTHING`,
		ex.ID, ex.UserID, ex.Question, pq.Array(ex.Points), ex.Topic, ex.Language, ex.Snippet, ex.CreatedAt)
	if err != nil {
		return Exchange{}, fmt.Errorf("failed to save exchange: %w", err)
	}
	return ex, nil
}

func (s *PostgresStore) ListExchanges(ctx context.Context, userID string, limit int) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, question, points, topic, language, snippet, created_at
		FROM exchanges
		WHERE user_id=$1
		ORDER BY created_at DESC, id
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Exchange{}
	for rows.Next() {
		ex, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetExchange(ctx context.Context, userID string, id uuid.UUID) (Exchange, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, question, points, topic, language, snippet, created_at
		FROM exchanges WHERE id=$1 AND user_id=$2`, id, userID)
	ex, err := scanPostgres(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exchange{}, ErrExchangeNotFound
	}
	if err != nil {
		return Exchange{}, fmt.Errorf("failed to get exchange %s: %w", id, err)
	}
	return ex, nil
}

func (s *PostgresStore) DeleteExchange(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExchangeNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAllExchanges(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgres(row rowScanner) (Exchange, error) {
	var ex Exchange
	var points []string
	if err := row.Scan(&ex.ID, &ex.UserID, &ex.Question, pq.Array(&points), &ex.Topic, &ex.Language, &ex.Snippet, &ex.CreatedAt); err != nil {
		return Exchange{}, err
	}
	if points == nil {
		points = []string{}
	}
	ex.Points = points
	return ex, nil
}
