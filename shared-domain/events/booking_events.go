package events

import "time"

// BookingConfirmedEvent is the single event this system publishes.
const BookingConfirmedEvent = "booking.confirmed"

// BookingConfirmed is published once, at-least-once, after a successful confirm.
// Consumers outside this repo's scope must dedupe by BookingID.
type BookingConfirmed struct {
	BookingID         string    `json:"booking_id"`
	UserID            string    `json:"user_id"`
	RoomID            string    `json:"room_id"`
	CheckIn           time.Time `json:"check_in"`
	CheckOut          time.Time `json:"check_out"`
	TotalPrice        float64   `json:"total_price"`
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	RecoveryConfirmed bool      `json:"recovery_confirmed"`
}
