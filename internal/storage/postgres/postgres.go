package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WOOWTECH/ha-finance/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		key        TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		data       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Store keeps the snapshot as one row of the snapshots table, keyed by the
// snapshot key.
type Store struct {
	db  *sql.DB
	key string
}

func New(db *sql.DB, key string) *Store {
	return &Store{db: db, key: key}
}

// EnsureSchema creates the snapshots table when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating snapshots table: %w", err)
	}

	return nil
}

func (s *Store) Read(ctx context.Context) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE key = $1`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoSnapshot
	}

	if err != nil {
		return nil, fmt.Errorf("selecting snapshot %q: %w", s.key, err)
	}

	return data, nil
}

func (s *Store) Write(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO snapshots (key, version, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET version = EXCLUDED.version, data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, s.key, storage.Version, data); err != nil {
		return fmt.Errorf("upserting snapshot %q: %w", s.key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = $1`, s.key); err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", s.key, err)
	}

	return nil
}
