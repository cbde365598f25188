package idempotency

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore is a Store backed by a single three-column table
// (key text primary key, response_json jsonb/text, created_at timestamptz).
// Both Inventory and Payment instantiate one, each against its own table
// name, keeping the two stores independent.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Record, error) {
	query := fmt.Sprintf(`SELECT key, response_json, created_at FROM %s WHERE key = $1`, s.table)

	var rec Record
	err := s.db.QueryRowContext(ctx, query, key).Scan(&rec.Key, &rec.ResponseJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert inserts (key, response); on a unique-key conflict where the
// stored response differs it leaves the existing row untouched and
// returns ErrConflict so the caller can surface an IDEMPOTENCY_CONFLICT
// business error instead of silently replaying an unrelated request.
func (s *PostgresStore) Upsert(ctx context.Context, tx *sql.Tx, key string, response []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, response_json, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO NOTHING
		RETURNING response_json`, s.table)

	var stored []byte
	err := tx.QueryRowContext(ctx, query, key, response).Scan(&stored)
	if err == sql.ErrNoRows {
		// Row already existed; fetch what's there to check for conflict.
		checkQuery := fmt.Sprintf(`SELECT response_json FROM %s WHERE key = $1`, s.table)
		if scanErr := tx.QueryRowContext(ctx, checkQuery, key).Scan(&stored); scanErr != nil {
			return scanErr
		}
		if string(stored) != string(response) {
			return ErrConflict
		}
		return nil
	}
	return err
}
