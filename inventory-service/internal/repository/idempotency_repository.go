package repository

import (
	"database/sql"

	"github.com/distributed-hotel-saga/shared-domain/idempotency"
)

// NewIdempotencyStore binds the shared Postgres-backed store to inventory's
// own idempotency table, keeping it independent from payment's.
func NewIdempotencyStore(db *sql.DB) *idempotency.PostgresStore {
	return idempotency.NewPostgresStore(db, "inventory_idempotency")
}
