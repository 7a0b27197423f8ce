// Package postgres provides a PostgreSQL implementation of the fortune.Store
// interface. Records are stored one row per user as jsonb, so updates for
// different users never contend on a shared document.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Config holds PostgreSQL store configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Store implements fortune.Store using PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS tarot_users (
	user_id    TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// New creates a new PostgreSQL store and ensures the schema exists.
func New(ctx context.Context, config Config) (*Store, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Get implements fortune.Store
func (s *Store) Get(ctx context.Context, userID string) (*fortune.UserRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM tarot_users WHERE user_id = $1`, userID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select record: %w", err)
	}

	rec, err := fortune.UnmarshalRecord(data)
	if err != nil {
		// Corrupt row: treat as absent, per the fail-open contract.
		return nil, nil
	}
	return rec, nil
}

// Put implements fortune.Store
func (s *Store) Put(ctx context.Context, userID string, rec *fortune.UserRecord) error {
	data, err := fortune.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO tarot_users (user_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET record = EXCLUDED.record, updated_at = now()`,
		userID, data)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// Delete implements fortune.Store
func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM tarot_users WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// All implements fortune.Store
func (s *Store) All(ctx context.Context) (map[string]*fortune.UserRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id, record FROM tarot_users`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*fortune.UserRecord)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := fortune.UnmarshalRecord(data)
		if err != nil {
			continue
		}
		out[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Reset implements fortune.Store
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE tarot_users`); err != nil {
		return fmt.Errorf("truncate records: %w", err)
	}
	return nil
}
