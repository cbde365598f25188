package handlers

import (
	"time"

	"github.com/distributed-hotel-saga/booking-service/internal/domain"
)

type BookingView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	RoomID     string    `json:"room_id"`
	CheckIn    time.Time `json:"check_in_date"`
	CheckOut   time.Time `json:"check_out_date"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	SagaStep   string    `json:"saga_step"`
	PaymentID  string    `json:"payment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toBookingView(b *domain.Booking) BookingView {
	return BookingView{
		ID:         b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Quantity:   b.Quantity,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
		SagaStep:   string(b.SagaStep),
		PaymentID:  b.PaymentID,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
