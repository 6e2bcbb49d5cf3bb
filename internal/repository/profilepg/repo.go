// Package profilepg stores user preference profiles in Postgres as JSONB documents.
package profilepg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
)

const (
	createTableSQL = `
        CREATE TABLE IF NOT EXISTS user_profiles (
            user_id    TEXT PRIMARY KEY,
            profile    JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`

	selectProfileSQL = `
        SELECT profile, updated_at
        FROM user_profiles
        WHERE user_id = $1`

	upsertProfileSQL = `
        INSERT INTO user_profiles (user_id, profile, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE
        SET profile = EXCLUDED.profile, updated_at = EXCLUDED.updated_at`
)

// pool is the subset of pgxpool.Pool the repository needs; pgxmock implements it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo is a Postgres-backed profile repository.
type Repo struct {
	pool pool
}

// New wraps a connection pool.
func New(p pool) *Repo {
	return &Repo{pool: p}
}

// Open creates and pings a pgx connection pool.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return p, nil
}

// Migrate creates the profile table when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create user_profiles: %w", err)
	}
	return nil
}

// Get returns the stored profile or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID string) (*preference.Profile, error) {
	var (
		raw       []byte
		updatedAt time.Time
	)
	if err := r.pool.QueryRow(ctx, selectProfileSQL, userID).Scan(&raw, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select profile %s: %w", userID, err)
	}

	var p preference.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	p.UserID = userID
	p.UpdatedAt = updatedAt
	return &p, nil
}

// Save inserts or replaces the profile row.
func (r *Repo) Save(ctx context.Context, p *preference.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.UserID, err)
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := r.pool.Exec(ctx, upsertProfileSQL, p.UserID, raw, updatedAt); err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}
