// Package snapshot keeps the serialized POS snapshot in a single
// key/value slot, in PostgreSQL or in a local SQLite file.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS pos_snapshots (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgxConn is the subset of *pgxpool.Pool the store needs.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps the snapshot in the pos_snapshots table.
type PostgresStore struct {
	db  PgxConn
	key string
}

// NewPostgresStore creates the table if needed and returns a store for key.
func NewPostgresStore(ctx context.Context, db PgxConn, key string) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("create pos_snapshots: %w", err)
	}
	return &PostgresStore{db: db, key: key}, nil
}

// Load returns the stored snapshot, or nil when there is none.
func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := s.db.QueryRow(ctx, `SELECT body FROM pos_snapshots WHERE key = $1`, s.key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", s.key, err)
	}
	return body, nil
}

// Save replaces the stored snapshot.
func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO pos_snapshots (key, body, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.key, data)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", s.key, err)
	}
	return nil
}
