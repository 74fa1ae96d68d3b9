package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps exchanges in a single local file. Points are stored as a
// JSON array and timestamps as RFC 3339 text.
type SQLiteStore struct {
	db *sql.DB
}

// Fixed-width UTC layout so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; modernc serialises access per connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			question TEXT NOT NULL,
			points TEXT NOT NULL DEFAULT '[]',
			topic TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			snippet TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS exchanges_user_created_idx ON exchanges (user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveExchange(ctx context.Context, ex Exchange) (Exchange, error) {
	ex, err := prepare(ex)
	if err != nil {
		return Exchange{}, err
	}
	points, err := json.Marshal(ex.Points)
	if err != nil {
		return Exchange{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO exchanges(id, user_id, question, points, topic, language, snippet, created_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		ex.ID.String(), ex.UserID, ex.Question, string(points), ex.Topic, ex.Language, ex.Snippet,
		ex.CreatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return Exchange{}, fmt.Errorf("failed to save exchange: %w", err)
	}
	return ex, nil
}

func (s *SQLiteStore) ListExchanges(ctx context.Context, userID string, limit int) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, question, points, topic, language, snippet, created_at
		FROM exchanges
		WHERE user_id=?
		ORDER BY created_at DESC, id
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Exchange{}
	for rows.Next() {
		ex, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetExchange(ctx context.Context, userID string, id uuid.UUID) (Exchange, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, question, points, topic, language, snippet, created_at
		FROM exchanges WHERE id=? AND user_id=?`, id.String(), userID)
	ex, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exchange{}, ErrExchangeNotFound
	}
	if err != nil {
		return Exchange{}, fmt.Errorf("failed to get exchange %s: %w", id, err)
	}
	return ex, nil
}

func (s *SQLiteStore) DeleteExchange(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE id=? AND user_id=?`, id.String(), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExchangeNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteAllExchanges(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE user_id=?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLite(row rowScanner) (Exchange, error) {
	var (
		ex        Exchange
		id        string
		points    string
		createdAt string
	)
	if err := row.Scan(&id, &ex.UserID, &ex.Question, &points, &ex.Topic, &ex.Language, &ex.Snippet, &createdAt); err != nil {
		return Exchange{}, err
	}
	var err error
	if ex.ID, err = uuid.Parse(id); err != nil {
		return Exchange{}, fmt.Errorf("bad exchange id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(points), &ex.Points); err != nil {
		return Exchange{}, fmt.Errorf("bad points for exchange %s: %w", id, err)
	}
	if ex.Points == nil {
		ex.Points = []string{}
	}
	if ex.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return Exchange{}, fmt.Errorf("bad created_at for exchange %s: %w", id, err)
	}
	return ex, nil
}
