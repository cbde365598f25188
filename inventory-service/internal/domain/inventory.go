package domain

import (
	"time"

	"github.com/distributed-hotel-saga/shared-domain/types"
)

// RoomAvailability mirrors one row of room_availability: per-(room, date)
// stock. Mutated only by the guarded decrement or by an explicit increment
// during release/expiry.
type RoomAvailability struct {
	types.RoomAvailability
}

// ReservationHold is a short-lived claim on inventory created alongside a
// successful reserve. A hold exists iff inventory has been decremented for
// that (booking, room, date) and neither confirmed nor released.
type ReservationHold struct {
	ID               string
	BookingID        string
	RoomID           string
	AvailabilityDate time.Time
	Quantity         int
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// Nights returns the half-open [checkIn, checkOut) date range as individual
// nightly dates, normalized to midnight UTC.
func Nights(checkIn, checkOut time.Time) []time.Time {
	var nights []time.Time
	d := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	for d.Before(end) {
		nights = append(nights, d)
		d = d.AddDate(0, 0, 1)
	}
	return nights
}
