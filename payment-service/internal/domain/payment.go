package domain

import (
	"time"

	"github.com/distributed-hotel-saga/shared-domain/types"
)

// Payment mirrors the payments row. There is no refund lifecycle: charging
// is the only terminal operation, so there are no refund fields or methods
// here.
type Payment struct {
	types.Payment
}

func NewPendingPayment(userID, bookingID string, amount float64, method, transactionID string) *Payment {
	now := time.Now()
	return &Payment{
		types.Payment{
			BookingID:     bookingID,
			UserID:        userID,
			Amount:        amount,
			PaymentMethod: method,
			Status:        types.PaymentStatusPending,
			TransactionID: transactionID,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

func (p *Payment) MarkSucceeded() {
	p.Status = types.PaymentStatusSuccess
	p.UpdatedAt = time.Now()
}

func (p *Payment) MarkFailed() {
	p.Status = types.PaymentStatusFailed
	p.UpdatedAt = time.Now()
}
