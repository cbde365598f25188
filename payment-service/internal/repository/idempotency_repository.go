package repository

import (
	"database/sql"

	"github.com/distributed-hotel-saga/shared-domain/idempotency"
)

func NewIdempotencyStore(db *sql.DB) *idempotency.PostgresStore {
	return idempotency.NewPostgresStore(db, "payment_idempotency")
}
