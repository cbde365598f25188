package domain

import (
	"time"

	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/types"
)

// Booking mirrors the bookings row and carries the saga_step that drives the
// orchestrator. It has no line items or shipping address — a booking is one
// room, one date range, one quantity.
type Booking struct {
	types.BookingView
}

func NewPendingBooking(userID, roomID string, checkIn, checkOut time.Time, quantity int) *Booking {
	now := time.Now()
	return &Booking{
		types.BookingView{
			UserID:    userID,
			RoomID:    roomID,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Quantity:  quantity,
			Status:    types.BookingStatusPending,
			SagaStep:  types.SagaStepReserveSent,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// IdempotencyKey is the single key shared by the reserve and charge calls
// for this booking: "booking-{id}".
func (b *Booking) IdempotencyKey() string {
	return "booking-" + b.ID
}

func (b *Booking) AdvanceTo(step types.SagaStep) {
	b.SagaStep = step
	b.UpdatedAt = time.Now()
}

func (b *Booking) MarkConfirmed() {
	b.Status = types.BookingStatusConfirmed
	b.SagaStep = types.SagaStepConfirmed
	b.UpdatedAt = time.Now()
}

func (b *Booking) MarkFailed() {
	b.Status = types.BookingStatusFailed
	b.SagaStep = types.SagaStepFailed
	b.UpdatedAt = time.Now()
}

func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case types.BookingStatusConfirmed, types.BookingStatusCancelled, types.BookingStatusFailed:
		return true
	default:
		return false
	}
}

// CreateBookingRequest is the wire shape of the create-booking request.
type CreateBookingRequest struct {
	UserID   string    `json:"user_id"`
	RoomID   string    `json:"room_id"`
	CheckIn  time.Time `json:"check_in_date"`
	CheckOut time.Time `json:"check_out_date"`
	Quantity int       `json:"quantity"`
}

func (r CreateBookingRequest) Validate() error {
	if r.UserID == "" {
		return kinderr.New(kinderr.BusinessError, kinderr.CodeInvalidRequest, "user_id is required")
	}
	if r.RoomID == "" {
		return kinderr.New(kinderr.BusinessError, kinderr.CodeInvalidRequest, "room_id is required")
	}
	if r.Quantity <= 0 {
		return kinderr.New(kinderr.BusinessError, kinderr.CodeInvalidRequest, "quantity must be positive")
	}
	if !r.CheckOut.After(r.CheckIn) {
		return kinderr.New(kinderr.BusinessError, kinderr.CodeInvalidRequest, "check_out_date must be after check_in_date")
	}
	return nil
}
