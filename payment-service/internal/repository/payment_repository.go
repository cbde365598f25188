package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/distributed-hotel-saga/payment-service/internal/domain"
	_ "github.com/lib/pq"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// InsertPending writes the PENDING row a charge starts as. The row's id is
// generated by the caller so it can be embedded in the idempotency response
// before the gateway call resolves.
func (r *PaymentRepository) InsertPending(ctx context.Context, tx *sql.Tx, id string, payment *domain.Payment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, user_id, booking_id, amount, payment_method, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, payment.UserID, payment.BookingID, payment.Amount, payment.PaymentMethod,
		payment.Status, payment.TransactionID, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending payment: %w", err)
	}
	return nil
}

// UpdateTerminal writes the gateway's terminal decision in the same
// transaction the idempotency record is committed in
// requires the decision and the idempotency record to be atomic together.
func (r *PaymentRepository) UpdateTerminal(ctx context.Context, tx *sql.Tx, id string, status, transactionID string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = $2, transaction_id = $3, updated_at = now()
		WHERE id = $1`,
		id, status, transactionID,
	)
	if err != nil {
		return fmt.Errorf("update terminal payment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, booking_id, amount, payment_method, status, transaction_id, created_at, updated_at
		FROM payments WHERE booking_id = $1
		ORDER BY created_at DESC LIMIT 1`,
		bookingID,
	)
	return scanPayment(row)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, booking_id, amount, payment_method, status, transaction_id, created_at, updated_at
		FROM payments WHERE id = $1`,
		id,
	)
	return scanPayment(row)
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	payment := &domain.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.BookingID,
		&payment.Amount,
		&payment.PaymentMethod,
		&payment.Status,
		&payment.TransactionID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return payment, nil
}
