package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fittrack/internal/domain"
)

// PostgresRepository stores each profile as one JSONB row, keeping the
// whole-document read/replace contract of the file representation.
type PostgresRepository struct {
	pool     *pgxpool.Pool
	username string
}

// NewPostgresRepository constructs a repository scoped to one username.
func NewPostgresRepository(pool *pgxpool.Pool, username string) *PostgresRepository {
	return &PostgresRepository{pool: pool, username: username}
}

// EnsureSchema creates the profiles table if it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS fitness_profiles (
        username   TEXT PRIMARY KEY,
        profile    JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`
	_, err := r.pool.Exec(ctx, stmt)
	return err
}

// Load fetches and decodes the profile document for the configured username.
func (r *PostgresRepository) Load(ctx context.Context) (*domain.UserProfile, error) {
	const query = `SELECT profile FROM fitness_profiles WHERE username = $1`

	var raw []byte
	if err := r.pool.QueryRow(ctx, query, r.username).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if profile.Username == "" {
		return nil, errors.New("decode profile: missing username")
	}
	return &profile, nil
}

// Save replaces the whole document for the configured username.
func (r *PostgresRepository) Save(ctx context.Context, profile domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	const stmt = `INSERT INTO fitness_profiles (username, profile, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (username) DO UPDATE SET profile = EXCLUDED.profile, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, stmt, r.username, data); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
