package snapshot

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is an open snapshot slot.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

type pooledStore struct {
	*PostgresStore
	pool *pgxpool.Pool
}

func (s *pooledStore) Close() error {
	s.pool.Close()
	return nil
}

// Open connects to PostgreSQL when databaseURL is set, and to the SQLite
// file at sqlitePath otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath, key string) (Store, error) {
	if databaseURL == "" {
		s, err := OpenSQLite(sqlitePath, key)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s, err := NewPostgresStore(ctx, pool, key)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &pooledStore{PostgresStore: s, pool: pool}, nil
}
