package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/distributed-hotel-saga/booking-service/internal/domain"
	"github.com/distributed-hotel-saga/shared-domain/types"
	_ "github.com/lib/pq"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

const bookingColumns = `id, user_id, room_id, check_in_date, check_out_date, quantity, total_price, status, saga_step, payment_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status, sagaStep string
	var paymentID sql.NullString

	err := s.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut, &b.Quantity, &b.TotalPrice,
		&status, &sagaStep, &paymentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = types.BookingStatus(status)
	b.SagaStep = types.SagaStep(sagaStep)
	if paymentID.Valid {
		b.PaymentID = paymentID.String
	}
	return b, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (r *BookingRepository) Create(ctx context.Context, tx *sql.Tx, b *domain.Booking) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		b.ID, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.Quantity, b.TotalPrice,
		string(b.Status), string(b.SagaStep), nullableString(b.PaymentID), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetForUpdate takes the row-level lock required before an in-transaction
// step write: both the request path and the recovery worker lock the booking
// row before they update it, so only one ever advances a given booking at a
// time.
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Booking, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// Update persists the mutable saga fields. Callers must have already taken
// the row lock via GetForUpdate inside the same transaction.
func (r *BookingRepository) Update(ctx context.Context, tx *sql.Tx, b *domain.Booking) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET total_price = $2, status = $3, saga_step = $4, payment_id = $5, updated_at = $6
		WHERE id = $1`,
		b.ID, b.TotalPrice, string(b.Status), string(b.SagaStep), nullableString(b.PaymentID), b.UpdatedAt,
	)
	return err
}

// GetByID is the plain read path for get_booking — no lock, no transaction.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// ListByUserID supports the pagination the booking listing endpoint adds
// beyond a bare list-by-user lookup.
func (r *BookingRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

// StuckBookings returns every booking mid-pipeline for longer than
// olderThan — the recovery worker decides per booking whether to advance it
// or give up on it based on how stale it is.
func (r *BookingRepository) StuckBookings(ctx context.Context, olderThan time.Duration) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE saga_step IN ($1, $2, $3) AND updated_at < $4`,
		string(types.SagaStepReserveSent), string(types.SagaStepReserveOK), string(types.SagaStepPaymentSent), time.Now().Add(-olderThan),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
