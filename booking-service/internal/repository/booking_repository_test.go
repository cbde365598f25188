package repository

import (
	"context"
	"testing"
	"time"

	"github.com/distributed-hotel-saga/booking-service/internal/domain"
	"github.com/distributed-hotel-saga/shared-domain/types"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newTestRepo(t *testing.T) (*BookingRepository, sqlmock.Sqlmock, func()) {
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
	return NewBookingRepository(db), mock, cleanup
}

func sampleBooking() *domain.Booking {
	b := domain.NewPendingBooking("user-1", "room-101", time.Now(), time.Now().Add(48*time.Hour), 2)
	b.ID = "booking-1"
	return b
}

func TestBookingRepository_Create(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	b := sampleBooking()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.Create(context.Background(), tx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestBookingRepository_GetForUpdate_TakesRowLock(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	b := sampleBooking()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "room_id", "check_in_date", "check_out_date", "quantity", "total_price",
		"status", "saga_step", "payment_id", "created_at", "updated_at",
	}).AddRow(
		b.ID, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.Quantity, b.TotalPrice,
		string(b.Status), string(b.SagaStep), nil, b.CreatedAt, b.UpdatedAt,
	)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM bookings WHERE id = .* FOR UPDATE").WillReturnRows(rows)
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	got, err := repo.GetForUpdate(context.Background(), tx, b.ID)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("expected booking %s, got %+v", b.ID, got)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestBookingRepository_GetForUpdate_NotFound(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM bookings WHERE id = .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "room_id", "check_in_date", "check_out_date", "quantity", "total_price",
			"status", "saga_step", "payment_id", "created_at", "updated_at",
		}))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	got, err := repo.GetForUpdate(context.Background(), tx, "missing")
	if err != nil {
		t.Fatalf("expected nil error on not-found, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil booking, got %+v", got)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestBookingRepository_Update(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	b := sampleBooking()
	b.AdvanceTo(types.SagaStepReserveOK)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.Update(context.Background(), tx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestBookingRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM bookings WHERE id = ").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "room_id", "check_in_date", "check_out_date", "quantity", "total_price",
			"status", "saga_step", "payment_id", "created_at", "updated_at",
		}))

	got, err := repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil booking, got %+v", got)
	}
}

func TestBookingRepository_ListByUserID_Paginates(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	b := sampleBooking()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT .* FROM bookings").WillReturnRows(sqlmock.NewRows([]string{
		"id", "user_id", "room_id", "check_in_date", "check_out_date", "quantity", "total_price",
		"status", "saga_step", "payment_id", "created_at", "updated_at",
	}).AddRow(
		b.ID, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.Quantity, b.TotalPrice,
		string(b.Status), string(b.SagaStep), nil, b.CreatedAt, b.UpdatedAt,
	))

	bookings, total, err := repo.ListByUserID(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected one row, got %d", len(bookings))
	}
}

func TestBookingRepository_StuckBookings_MatchesInFlightSteps(t *testing.T) {
	repo, mock, cleanup := newTestRepo(t)
	defer cleanup()

	b := sampleBooking()
	b.AdvanceTo(types.SagaStepPaymentSent)

	mock.ExpectQuery("SELECT .* FROM bookings WHERE saga_step IN").WillReturnRows(sqlmock.NewRows([]string{
		"id", "user_id", "room_id", "check_in_date", "check_out_date", "quantity", "total_price",
		"status", "saga_step", "payment_id", "created_at", "updated_at",
	}).AddRow(
		b.ID, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.Quantity, b.TotalPrice,
		string(b.Status), string(b.SagaStep), nil, b.CreatedAt, b.UpdatedAt,
	))

	bookings, err := repo.StuckBookings(context.Background(), 10*time.Minute)
	if err != nil {
		t.Fatalf("stuck bookings: %v", err)
	}
	if len(bookings) != 1 || bookings[0].SagaStep != types.SagaStepPaymentSent {
		t.Fatalf("unexpected result: %+v", bookings)
	}
}
