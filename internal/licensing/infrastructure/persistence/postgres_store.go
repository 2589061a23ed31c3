package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS markpro_slots (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// PostgresSlotStore stores slots in PostgreSQL, one row per namespace and key.
type PostgresSlotStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresPool creates a connection pool for url.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

// NewPostgresSlotStore ensures the slots table exists.
func NewPostgresSlotStore(ctx context.Context, pool *pgxpool.Pool, namespace string) (*PostgresSlotStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}
	return &PostgresSlotStore{pool: pool, namespace: namespace}, nil
}

// Get returns the value stored under key.
func (s *PostgresSlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM markpro_slots WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key.
func (s *PostgresSlotStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO markpro_slots (namespace, key, value, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, s.namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete clears key.
func (s *PostgresSlotStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM markpro_slots WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Ping verifies the pool can reach the server.
func (s *PostgresSlotStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresSlotStore) Close() error {
	s.pool.Close()
	return nil
}
