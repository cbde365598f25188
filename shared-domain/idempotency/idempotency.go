// Package idempotency implements the read/write path shared by Inventory
// and Payment: a durable store is the source of truth, an optional fast
// cache only accelerates reads, and a key's stored response is write-once.
package idempotency

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/rs/zerolog/log"
)

// Record is one row of a service's idempotency table.
type Record struct {
	Key          string
	ResponseJSON []byte
	CreatedAt    time.Time
}

// Store is the durable, transactional source of truth. Each service
// implements it against its own table (inventory or payment idempotency
// store) — the two are never shared, per the service boundary.
type Store interface {
	// Get reads a record by key using the service's own connection pool.
	// Returns (nil, nil) on miss.
	Get(ctx context.Context, key string) (*Record, error)

	// Upsert writes (key, response) inside the caller's transaction. Must
	// fail on a key already bound to a different response body so a
	// concurrent insert loses the unique-key race rather than silently
	// overwriting.
	Upsert(ctx context.Context, tx *sql.Tx, key string, response []byte) error
}

// Cache is the optional fast-read accelerator, normally Redis-backed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Lookup runs the read path: cache first (best
// effort), then the durable store. A durable-store error is surfaced as
// ServiceUnavailable rather than treated as "not yet processed" — the
// caller must retry later with the same key, never proceed with a fresh
// attempt.
func Lookup(ctx context.Context, cache Cache, store Store, key string) (response []byte, found bool, err error) {
	if key == "" {
		return nil, false, nil
	}

	if cache != nil {
		if body, ok, cacheErr := cache.Get(ctx, key); cacheErr == nil && ok {
			return body, true, nil
		} else if cacheErr != nil {
			log.Warn().Err(cacheErr).Str("key", key).Msg("idempotency fast cache read failed, falling through to durable store")
		}
	}

	rec, getErr := store.Get(ctx, key)
	if getErr != nil {
		return nil, false, kinderr.Unavailable("idempotency store unavailable", getErr)
	}
	if rec == nil {
		return nil, false, nil
	}
	return rec.ResponseJSON, true, nil
}

// Commit writes the memoized response in the same transaction as the
// effect it records. Call this after the effect's own statements but
// before the transaction commits — if this fails, the whole transaction
// must roll back, so no user-visible effect survives without its memo.
func Commit(ctx context.Context, tx *sql.Tx, store Store, key string, response interface{}) ([]byte, error) {
	if key == "" {
		body, err := json.Marshal(response)
		return body, err
	}

	body, err := json.Marshal(response)
	if err != nil {
		return nil, kinderr.Internal("failed to serialize idempotency response", err)
	}

	if err := store.Upsert(ctx, tx, key, body); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		return nil, kinderr.Internal("failed to persist idempotency record", err)
	}

	return body, nil
}

// WarmCache best-effort populates the fast cache outside the transaction;
// failures are logged and ignored, never surfaced to the caller.
func WarmCache(ctx context.Context, cache Cache, key string, response []byte, ttl time.Duration) {
	if cache == nil || key == "" {
		return
	}
	if err := cache.Set(ctx, key, response, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("idempotency fast cache warm failed")
	}
}

// ErrConflict is returned by a Store.Upsert implementation when a key is
// reused with a payload different from the one already committed for it.
var ErrConflict = errors.New("idempotency key bound to a different response")
