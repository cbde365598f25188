package types

import "time"

// ReservationStatus is the status returned by Inventory's reserve operation.
type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "RESERVED"
)

// ReserveRequest is the wire shape of a reservation hold request.
type ReserveRequest struct {
	RoomID         string    `json:"room_id"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	Quantity       int       `json:"quantity"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

// ReserveResponse is returned on a successful (or idempotently replayed) reserve.
type ReserveResponse struct {
	ReservationID string            `json:"reservation_id"`
	TotalPrice    float64           `json:"total_price"`
	Status        ReservationStatus `json:"status"`
}

// ConfirmRequest deletes the holds belonging to a booking.
type ConfirmRequest struct {
	BookingID string `json:"booking_id"`
}

// ReleaseRequest is inventory's compensation operation, crediting stock back.
type ReleaseRequest struct {
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Quantity  int       `json:"quantity"`
	BookingID string    `json:"booking_id,omitempty"`
}

// RoomAvailability mirrors the room_availability row for read paths.
type RoomAvailability struct {
	RoomID          string    `json:"room_id"`
	AvailabilityDate time.Time `json:"availability_date"`
	AvailableCount  int       `json:"available_count"`
	PricePerNight   float64   `json:"price_per_night"`
	Version         int64     `json:"version"`
}
