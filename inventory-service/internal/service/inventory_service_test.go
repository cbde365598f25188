package service

import (
	"context"
	"testing"
	"time"

	"github.com/distributed-hotel-saga/inventory-service/internal/repository"
	"github.com/distributed-hotel-saga/shared-domain/lock"
	"github.com/distributed-hotel-saga/shared-domain/types"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, roomID, firstDate string) (*lock.Handle, error) {
	return &lock.Handle{}, nil
}

func newTestService(t *testing.T) (*InventoryService, sqlmock.Sqlmock, func()) {
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

	repo := repository.NewInventoryRepository(db)
	idempStore := repository.NewIdempotencyStore(db)

	svc := NewInventoryService(repo, idempStore, nil, noopLocker{}, 15*time.Minute, 24*time.Hour)
	return svc, mock, cleanup
}

func TestReserve_InsufficientAvailability_RollsBack(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	t.Cleanup(cleanup)

	checkIn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE room_availability").
		WithArgs("room-101", checkIn, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), types.ReserveRequest{
		RoomID:   "room-101",
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Quantity: 5,
	})
	if err == nil {
		t.Fatalf("expected insufficient availability error")
	}
}

func TestReserve_HappyPath_CommitsAndInsertsHold(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	t.Cleanup(cleanup)

	checkIn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	night1 := checkIn
	night2 := checkIn.AddDate(0, 0, 1)

	mock.ExpectQuery("SELECT key, response_json, created_at FROM inventory_idempotency").
		WithArgs("booking-42").
		WillReturnRows(sqlmock.NewRows([]string{"key", "response_json", "created_at"}))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE room_availability").
		WithArgs("room-101", night1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT price_per_night").
		WithArgs("room-101", night1).
		WillReturnRows(sqlmock.NewRows([]string{"price_per_night"}).AddRow(100.0))
	mock.ExpectExec("UPDATE room_availability").
		WithArgs("room-101", night2, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT price_per_night").
		WithArgs("room-101", night2).
		WillReturnRows(sqlmock.NewRows([]string{"price_per_night"}).AddRow(100.0))
	mock.ExpectExec("INSERT INTO reservation_holds").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reservation_holds").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO inventory_idempotency").
		WillReturnRows(sqlmock.NewRows([]string{"response_json"}).AddRow([]byte(`{}`)))
	mock.ExpectCommit()

	resp, err := svc.Reserve(context.Background(), types.ReserveRequest{
		RoomID:         "room-101",
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Quantity:       2,
		IdempotencyKey: "booking-42",
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if resp.TotalPrice != 400 {
		t.Fatalf("expected total price 400, got %v", resp.TotalPrice)
	}
}

func TestRelease_CreditsAvailabilityWhenHoldsExist(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	t.Cleanup(cleanup)

	checkIn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reservation_holds WHERE booking_id").
		WithArgs("booking-42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE room_availability").
		WithArgs("room-101", checkIn, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Release(context.Background(), types.ReleaseRequest{
		BookingID: "booking-42",
		RoomID:    "room-101",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
}

// TestRelease_SecondCallIsNoOp is the concurrent/duplicate-release scenario:
// the delete's rows-affected count, not a separate pre-check read, is what
// gates the credit, so a second release for a booking whose holds are
// already gone never double-credits stock.
func TestRelease_SecondCallIsNoOp(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	t.Cleanup(cleanup)

	checkIn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reservation_holds WHERE booking_id").
		WithArgs("booking-42").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := svc.Release(context.Background(), types.ReleaseRequest{
		BookingID: "booking-42",
		RoomID:    "room-101",
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
}
