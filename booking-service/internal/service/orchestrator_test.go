package service

import (
	"context"
	"testing"
	"time"

	"github.com/distributed-hotel-saga/booking-service/internal/domain"
	"github.com/distributed-hotel-saga/booking-service/internal/repository"
	"github.com/distributed-hotel-saga/shared-domain/events"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/types"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

type fakeInventory struct {
	reserveResp  *types.ReserveResponse
	reserveErr   error
	confirmErr   error
	releaseCalls int
	releaseErr   error
}

func (f *fakeInventory) Reserve(ctx context.Context, req types.ReserveRequest) (*types.ReserveResponse, error) {
	return f.reserveResp, f.reserveErr
}

func (f *fakeInventory) Confirm(ctx context.Context, bookingID string) error {
	return f.confirmErr
}

func (f *fakeInventory) Release(ctx context.Context, req types.ReleaseRequest) error {
	f.releaseCalls++
	return f.releaseErr
}

type fakePayment struct {
	resp *types.ChargeResponse
	err  error
}

func (f *fakePayment) Charge(ctx context.Context, req types.ChargeRequest) (*types.ChargeResponse, error) {
	return f.resp, f.err
}

type fakePublisher struct {
	published []events.BookingConfirmed
}

func (f *fakePublisher) PublishBookingConfirmed(event events.BookingConfirmed) error {
	f.published = append(f.published, event)
	return nil
}

func newTestOrchestrator(t *testing.T, inv InventoryClient, pay PaymentClient, pub Publisher) (*BookingOrchestrator, sqlmock.Sqlmock, func()) {
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

	repo := repository.NewBookingRepository(db)
	return NewBookingOrchestrator(repo, inv, pay, pub), mock, cleanup
}

func bookingRows(b *domain.Booking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "room_id", "check_in_date", "check_out_date", "quantity", "total_price",
		"status", "saga_step", "payment_id", "created_at", "updated_at",
	}).AddRow(
		b.ID, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.Quantity, b.TotalPrice,
		string(b.Status), string(b.SagaStep), nil, b.CreatedAt, b.UpdatedAt,
	)
}

// expectSave sets up the mock for one row-locked save() call: begin, lock
// read, update, commit.
func expectSave(mock sqlmock.Sqlmock, b *domain.Booking) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM bookings WHERE id = .* FOR UPDATE").WillReturnRows(bookingRows(b))
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func newBooking() *domain.Booking {
	b := domain.NewPendingBooking("user-1", "room-101", time.Now(), time.Now().Add(48*time.Hour), 2)
	b.ID = "booking-1"
	return b
}

func TestCreateBooking_HappyPath_Confirms(t *testing.T) {
	inv := &fakeInventory{reserveResp: &types.ReserveResponse{ReservationID: "res-1", TotalPrice: 400, Status: types.ReservationStatusReserved}}
	pay := &fakePayment{resp: &types.ChargeResponse{PaymentID: "pay-1", Status: types.PaymentStatusSuccess, TransactionID: "TXN_1"}}
	pub := &fakePublisher{}

	orch, mock, cleanup := newTestOrchestrator(t, inv, pay, pub)
	t.Cleanup(cleanup)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// save() after reserve (RESERVE_OK), save() after advancing to
	// PAYMENT_SENT, save() after confirm (CONFIRMED) — three row-locked
	// writes total, each against whatever booking state sqlmock hands back
	// (the returned row is not read back into the in-memory booking, so
	// its exact contents don't matter here).
	placeholder := newBooking()
	expectSave(mock, placeholder)
	expectSave(mock, placeholder)
	expectSave(mock, placeholder)

	result, err := orch.CreateBooking(context.Background(), domain.CreateBookingRequest{
		UserID: "user-1", RoomID: "room-101", CheckIn: time.Now(), CheckOut: time.Now().Add(48 * time.Hour), Quantity: 2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if result.Outcome != OutcomeConfirmed {
		t.Fatalf("expected CONFIRMED outcome, got %s", result.Outcome)
	}
	if result.Booking.TotalPrice != 400 {
		t.Fatalf("expected total price 400, got %v", result.Booking.TotalPrice)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if pub.published[0].RecoveryConfirmed {
		t.Fatalf("expected recovery_confirmed=false on the request-driven path")
	}
}

func TestCreateBooking_InsufficientAvailability_ReleasesAndFails(t *testing.T) {
	inv := &fakeInventory{reserveErr: kinderr.InsufficientAvailability()}
	pay := &fakePayment{}
	orch, mock, cleanup := newTestOrchestrator(t, inv, pay, nil)
	t.Cleanup(cleanup)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	placeholder := newBooking()
	expectSave(mock, placeholder) // compensateAndFail's save() into FAILED

	result, err := orch.CreateBooking(context.Background(), domain.CreateBookingRequest{
		UserID: "user-1", RoomID: "room-101", CheckIn: time.Now(), CheckOut: time.Now().Add(24 * time.Hour), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if result.Outcome != OutcomeBusinessFailure {
		t.Fatalf("expected FAILED outcome, got %s", result.Outcome)
	}
	if !kinderr.Is(result.Err, kinderr.BusinessError) {
		t.Fatalf("expected a business error cause, got %v", result.Err)
	}
	// Every clear failure is compensated with a release carrying the
	// booking_id; inventory finds no holds for it on this path, so nothing
	// is credited back.
	if inv.releaseCalls != 1 {
		t.Fatalf("expected exactly one compensating release call on a clear reserve failure, got %d", inv.releaseCalls)
	}
}

func TestCreateBooking_PaymentDeclined_ReleasesAndFails(t *testing.T) {
	inv := &fakeInventory{reserveResp: &types.ReserveResponse{ReservationID: "res-1", TotalPrice: 200, Status: types.ReservationStatusReserved}}
	pay := &fakePayment{resp: &types.ChargeResponse{Status: types.PaymentStatusFailed, Message: "card declined"}}
	orch, mock, cleanup := newTestOrchestrator(t, inv, pay, nil)
	t.Cleanup(cleanup)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	placeholder := newBooking()
	expectSave(mock, placeholder) // after reserve -> RESERVE_OK
	expectSave(mock, placeholder) // advance -> PAYMENT_SENT
	expectSave(mock, placeholder) // compensateAndFail -> FAILED

	result, err := orch.CreateBooking(context.Background(), domain.CreateBookingRequest{
		UserID: "user-1", RoomID: "room-101", CheckIn: time.Now(), CheckOut: time.Now().Add(24 * time.Hour), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if result.Outcome != OutcomeBusinessFailure {
		t.Fatalf("expected FAILED outcome, got %s", result.Outcome)
	}
	if inv.releaseCalls != 1 {
		t.Fatalf("expected exactly one release call on a clear decline, got %d", inv.releaseCalls)
	}
}

func TestCreateBooking_UnclearReserve_ReturnsPendingWithoutCompensation(t *testing.T) {
	inv := &fakeInventory{reserveErr: kinderr.Unclear("reserve call timed out", nil)}
	pay := &fakePayment{}
	orch, mock, cleanup := newTestOrchestrator(t, inv, pay, nil)
	t.Cleanup(cleanup)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// No save() expected: an unclear outcome leaves saga_step untouched.

	result, err := orch.CreateBooking(context.Background(), domain.CreateBookingRequest{
		UserID: "user-1", RoomID: "room-101", CheckIn: time.Now(), CheckOut: time.Now().Add(24 * time.Hour), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if result.Outcome != OutcomePendingUnclear {
		t.Fatalf("expected PENDING_UNCLEAR outcome, got %s", result.Outcome)
	}
	if inv.releaseCalls != 0 {
		t.Fatalf("expected no release call on an unclear outcome, got %d", inv.releaseCalls)
	}
}

func TestGiveUp_AtPaymentSent_DoesNotRelease(t *testing.T) {
	inv := &fakeInventory{}
	orch, mock, cleanup := newTestOrchestrator(t, inv, &fakePayment{}, nil)
	t.Cleanup(cleanup)

	booking := newBooking()
	booking.SagaStep = types.SagaStepPaymentSent
	booking.Status = types.BookingStatusPending

	expectSave(mock, booking)

	result, err := orch.GiveUp(context.Background(), booking)
	if err != nil {
		t.Fatalf("give up: %v", err)
	}
	if inv.releaseCalls != 0 {
		t.Fatalf("give-up at PAYMENT_SENT must never release, got %d release calls", inv.releaseCalls)
	}
	if result.Booking.Status != types.BookingStatusFailed {
		t.Fatalf("expected booking marked FAILED, got %s", result.Booking.Status)
	}
}

func TestGiveUp_AtReserveSent_Releases(t *testing.T) {
	inv := &fakeInventory{}
	orch, mock, cleanup := newTestOrchestrator(t, inv, &fakePayment{}, nil)
	t.Cleanup(cleanup)

	booking := newBooking()
	booking.SagaStep = types.SagaStepReserveSent

	expectSave(mock, booking)

	if _, err := orch.GiveUp(context.Background(), booking); err != nil {
		t.Fatalf("give up: %v", err)
	}
	if inv.releaseCalls != 1 {
		t.Fatalf("give-up at RESERVE_SENT should release exactly once, got %d", inv.releaseCalls)
	}
}
