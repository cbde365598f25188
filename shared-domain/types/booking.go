package types

import "time"

// BookingStatus is the externally visible lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusFailed    BookingStatus = "FAILED"
)

// SagaStep tracks progress through the reserve/pay/confirm pipeline.
type SagaStep string

const (
	SagaStepReserveSent  SagaStep = "RESERVE_SENT"
	SagaStepReserveOK    SagaStep = "RESERVE_OK"
	SagaStepPaymentSent  SagaStep = "PAYMENT_SENT"
	SagaStepConfirmed    SagaStep = "CONFIRMED"
	SagaStepFailed       SagaStep = "FAILED"
)

// BookingView is the read model returned across the booking API.
type BookingView struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	RoomID    string        `json:"room_id"`
	CheckIn   time.Time     `json:"check_in_date"`
	CheckOut  time.Time     `json:"check_out_date"`
	Quantity  int           `json:"quantity"`
	TotalPrice float64      `json:"total_price"`
	Status    BookingStatus `json:"status"`
	SagaStep  SagaStep      `json:"saga_step"`
	PaymentID string        `json:"payment_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
