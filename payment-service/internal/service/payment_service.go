package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/distributed-hotel-saga/payment-service/internal/domain"
	"github.com/distributed-hotel-saga/payment-service/internal/gateway"
	"github.com/distributed-hotel-saga/payment-service/internal/repository"
	"github.com/distributed-hotel-saga/shared-domain/idempotency"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type PaymentService struct {
	repo       *repository.PaymentRepository
	gateway    gateway.PaymentGateway
	idempStore idempotency.Store
	cache      idempotency.Cache
	cacheTTL   time.Duration
}

func NewPaymentService(
	repo *repository.PaymentRepository,
	paymentGateway gateway.PaymentGateway,
	idempStore idempotency.Store,
	cache idempotency.Cache,
	cacheTTL time.Duration,
) *PaymentService {
	return &PaymentService{
		repo:       repo,
		gateway:    paymentGateway,
		idempStore: idempStore,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// Charge runs the idempotency lookup, insert PENDING, simulate
// the gateway, write the terminal decision and the idempotency record in one
// transaction, then best-effort warm the fast cache.
func (s *PaymentService) Charge(ctx context.Context, req types.ChargeRequest) (*types.ChargeResponse, error) {
	if req.IdempotencyKey != "" {
		body, found, err := idempotency.Lookup(ctx, s.cache, s.idempStore, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if found {
			var resp types.ChargeResponse
			if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
				return nil, kinderr.Internal("failed to decode cached charge response", jsonErr)
			}
			return &resp, nil
		}
	}

	paymentID := uuid.New().String()
	payment := domain.NewPendingPayment(req.UserID, req.BookingID, req.Amount, req.Method, "")
	payment.ID = paymentID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, kinderr.Internal("failed to begin charge transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.repo.InsertPending(ctx, tx, paymentID, payment); err != nil {
		return nil, kinderr.Internal("failed to insert pending payment", err)
	}

	gatewayResp, err := s.gateway.ProcessPayment(gateway.PaymentRequest{
		BookingID:     req.BookingID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		PaymentMethod: req.Method,
	})
	if err != nil {
		return nil, kinderr.Unavailable("payment gateway call failed", err)
	}

	status := types.PaymentStatusFailed
	message := gatewayResp.FailureReason
	if gatewayResp.Success {
		status = types.PaymentStatusSuccess
		message = "payment processed"
	}

	if err := s.repo.UpdateTerminal(ctx, tx, paymentID, string(status), gatewayResp.TransactionID); err != nil {
		return nil, kinderr.Internal("failed to update terminal payment status", err)
	}

	response := &types.ChargeResponse{
		PaymentID:     paymentID,
		Status:        status,
		Message:       message,
		TransactionID: gatewayResp.TransactionID,
	}

	body, err := idempotency.Commit(ctx, tx, s.idempStore, req.IdempotencyKey, response)
	if err != nil {
		if err == idempotency.ErrConflict {
			return nil, kinderr.IdempotencyConflict()
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, kinderr.Internal("failed to commit charge transaction", err)
	}
	committed = true

	idempotency.WarmCache(ctx, s.cache, req.IdempotencyKey, body, s.cacheTTL)

	if !gatewayResp.Success {
		log.Info().Str("booking_id", req.BookingID).Str("reason", message).Msg("charge declined")
	}

	return response, nil
}

func (s *PaymentService) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	payment, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, kinderr.Internal("failed to read payment by booking id", err)
	}
	if payment == nil {
		return nil, kinderr.NotFound("no payment found for booking")
	}
	return payment, nil
}
