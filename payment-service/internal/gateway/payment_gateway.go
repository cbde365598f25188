package gateway

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PaymentGateway is the pluggable external-provider surface
// treats as replaceable: only the (success/failure, transaction_id) contract
// matters to the caller.
type PaymentGateway interface {
	ProcessPayment(request PaymentRequest) (*PaymentResponse, error)
}

type PaymentRequest struct {
	BookingID     string  `json:"booking_id"`
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

type PaymentResponse struct {
	Success       bool      `json:"success"`
	TransactionID string    `json:"transaction_id"`
	ProcessedAt   time.Time `json:"processed_at"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// MockPaymentGateway simulates a randomized outcome and a brief processing
// pause, simulating a real provider's latency.
type MockPaymentGateway struct {
	FailureRate float64
}

func NewMockPaymentGateway(failureRate float64) *MockPaymentGateway {
	return &MockPaymentGateway{FailureRate: failureRate}
}

func (m *MockPaymentGateway) ProcessPayment(request PaymentRequest) (*PaymentResponse, error) {
	log.Info().Str("booking_id", request.BookingID).Float64("amount", request.Amount).
		Msg("mock payment gateway processing charge")

	time.Sleep(300 * time.Millisecond)

	if rand.Float64() < m.FailureRate {
		return &PaymentResponse{
			Success:       false,
			ProcessedAt:   time.Now(),
			FailureReason: "card declined",
		}, nil
	}

	transactionID := fmt.Sprintf("TXN_%s", uuid.New().String()[:12])
	return &PaymentResponse{
		Success:       true,
		TransactionID: transactionID,
		ProcessedAt:   time.Now(),
	}, nil
}
