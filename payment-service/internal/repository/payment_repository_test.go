package repository

import (
	"context"
	"testing"

	"github.com/distributed-hotel-saga/payment-service/internal/domain"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newMockDB(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	cleanup := func() {
		db.Close()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	}
	return NewPaymentRepository(db), mock, cleanup
}

func TestInsertPending_WritesPendingRow(t *testing.T) {
	repo, mock, cleanup := newMockDB(t)
	t.Cleanup(cleanup)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	payment := domain.NewPendingPayment("user-1", "booking-1", 50, "credit_card", "")
	payment.ID = "pay-1"
	if err := repo.InsertPending(context.Background(), tx, "pay-1", payment); err != nil {
		t.Fatalf("insert pending: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestUpdateTerminal_NoRowsAffected_ReturnsError(t *testing.T) {
	repo, mock, cleanup := newMockDB(t)
	t.Cleanup(cleanup)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	if err := repo.UpdateTerminal(context.Background(), tx, "missing", "SUCCESS", "TXN_1"); err == nil {
		t.Fatalf("expected error for missing payment row")
	}
}

func TestGetByBookingID_NotFound_ReturnsNilNil(t *testing.T) {
	repo, mock, cleanup := newMockDB(t)
	t.Cleanup(cleanup)

	mock.ExpectQuery("SELECT id, user_id, booking_id").
		WithArgs("booking-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "booking_id", "amount", "payment_method", "status", "transaction_id", "created_at", "updated_at"}))

	payment, err := repo.GetByBookingID(context.Background(), "booking-missing")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payment != nil {
		t.Fatalf("expected nil payment, got %+v", payment)
	}
}
