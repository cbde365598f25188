package types

import "time"

// PaymentStatus is the terminal or pending state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// ChargeRequest is the wire shape of a charge request.
type ChargeRequest struct {
	UserID         string  `json:"user_id"`
	BookingID      string  `json:"booking_id"`
	Amount         float64 `json:"amount"`
	Method         string  `json:"payment_method"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// ChargeResponse is returned for both a fresh charge and an idempotent replay.
type ChargeResponse struct {
	PaymentID     string        `json:"payment_id"`
	Status        PaymentStatus `json:"status"`
	Message       string        `json:"message"`
	TransactionID string        `json:"transaction_id"`
}

// Payment mirrors the payments row for read paths (e.g. reconciliation lookups).
type Payment struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"booking_id"`
	UserID        string        `json:"user_id"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"payment_method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
