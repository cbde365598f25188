package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/distributed-hotel-saga/inventory-service/internal/domain"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// PricePerNight reads the current price for a (room, date) inside tx.
func (r *InventoryRepository) PricePerNight(ctx context.Context, tx *sql.Tx, roomID string, date time.Time) (float64, error) {
	var price float64
	err := tx.QueryRowContext(ctx,
		`SELECT price_per_night FROM room_availability WHERE room_id = $1 AND availability_date = $2`,
		roomID, date,
	).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no availability row for room %s on %s", roomID, date.Format("2006-01-02"))
	}
	return price, err
}

// GuardedDecrement is the single statement that makes oversell impossible:
// it only decrements when enough stock remains, and the caller learns
// success purely from rows-affected, never from a separate read-then-write.
func (r *InventoryRepository) GuardedDecrement(ctx context.Context, tx *sql.Tx, roomID string, date time.Time, quantity int) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE room_availability
		SET available_count = available_count - $3, version = version + 1
		WHERE room_id = $1 AND availability_date = $2 AND available_count >= $3`,
		roomID, date, quantity,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// IncrementAvailability credits stock back (release or reaper expiry).
func (r *InventoryRepository) IncrementAvailability(ctx context.Context, tx *sql.Tx, roomID string, date time.Time, quantity int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE room_availability
		SET available_count = available_count + $3, version = version + 1
		WHERE room_id = $1 AND availability_date = $2`,
		roomID, date, quantity,
	)
	return err
}

func (r *InventoryRepository) InsertHold(ctx context.Context, tx *sql.Tx, hold *domain.ReservationHold) error {
	if hold.ID == "" {
		hold.ID = uuid.New().String()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reservation_holds (id, booking_id, room_id, availability_date, quantity, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		hold.ID, hold.BookingID, hold.RoomID, hold.AvailabilityDate, hold.Quantity, hold.ExpiresAt,
	)
	return err
}

// DeleteHoldsByBookingID removes every hold for a booking and reports how
// many rows were deleted, so confirm/release can stay idempotent.
func (r *InventoryRepository) DeleteHoldsByBookingID(ctx context.Context, tx *sql.Tx, bookingID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM reservation_holds WHERE booking_id = $1`, bookingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *InventoryRepository) DeleteHold(ctx context.Context, tx *sql.Tx, holdID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservation_holds WHERE id = $1`, holdID)
	return err
}

// ExpiredHolds returns every hold past expiry for the reaper to process.
func (r *InventoryRepository) ExpiredHolds(ctx context.Context, now time.Time) ([]*domain.ReservationHold, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, room_id, availability_date, quantity, expires_at, created_at
		FROM reservation_holds WHERE expires_at < $1`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []*domain.ReservationHold
	for rows.Next() {
		h := &domain.ReservationHold{}
		if err := rows.Scan(&h.ID, &h.BookingID, &h.RoomID, &h.AvailabilityDate, &h.Quantity, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}
