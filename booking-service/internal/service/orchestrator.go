// Package service implements the booking saga orchestrator:
// a synchronous, request-driven state machine over reserve/charge/confirm
// that the recovery worker re-enters at the same points after a crash or
// an unclear outcome.
package service

import (
	"context"
	"time"

	"github.com/distributed-hotel-saga/booking-service/internal/domain"
	"github.com/distributed-hotel-saga/booking-service/internal/repository"
	"github.com/distributed-hotel-saga/shared-domain/events"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InventoryClient is the narrow surface the orchestrator needs from
// inventory-service; *client.InventoryClient satisfies it, tests substitute
// a fake.
type InventoryClient interface {
	Reserve(ctx context.Context, req types.ReserveRequest) (*types.ReserveResponse, error)
	Confirm(ctx context.Context, bookingID string) error
	Release(ctx context.Context, req types.ReleaseRequest) error
}

// PaymentClient is the narrow surface the orchestrator needs from
// payment-service.
type PaymentClient interface {
	Charge(ctx context.Context, req types.ChargeRequest) (*types.ChargeResponse, error)
}

// Publisher is the narrow surface the orchestrator needs to announce a
// confirmed booking; *messaging.Publisher satisfies it.
type Publisher interface {
	PublishBookingConfirmed(event events.BookingConfirmed) error
}

// Outcome is the first-class result variant used in place of
// exceptions for saga control flow.
type Outcome string

const (
	OutcomeConfirmed       Outcome = "CONFIRMED"
	OutcomeBusinessFailure Outcome = "FAILED"
	OutcomePendingUnclear  Outcome = "PENDING_UNCLEAR"
)

// Result is what every orchestrator entry point returns: the booking's
// current view plus which of the three outcomes it landed in. Err carries
// the classified business failure for the caller to map to a response.
type Result struct {
	Booking *domain.Booking
	Outcome Outcome
	Err     error
}

type BookingOrchestrator struct {
	repo      *repository.BookingRepository
	inventory InventoryClient
	payment   PaymentClient
	publisher Publisher
}

func NewBookingOrchestrator(repo *repository.BookingRepository, inventory InventoryClient, payment PaymentClient, publisher Publisher) *BookingOrchestrator {
	return &BookingOrchestrator{repo: repo, inventory: inventory, payment: payment, publisher: publisher}
}

// CreateBooking persists the booking in PENDING/RESERVE_SENT before any
// remote call, then drives it forward.
func (o *BookingOrchestrator) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking := domain.NewPendingBooking(req.UserID, req.RoomID, req.CheckIn, req.CheckOut, req.Quantity)
	booking.ID = uuid.New().String()

	tx, err := o.repo.BeginTx(ctx)
	if err != nil {
		return nil, kinderr.Internal("failed to begin booking creation transaction", err)
	}
	if err := o.repo.Create(ctx, tx, booking); err != nil {
		_ = tx.Rollback()
		return nil, kinderr.Internal("failed to persist new booking", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, kinderr.Internal("failed to commit booking creation", err)
	}

	return o.drive(ctx, booking, false)
}

func (o *BookingOrchestrator) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, kinderr.Internal("failed to read booking", err)
	}
	if booking == nil {
		return nil, kinderr.NotFound("booking not found")
	}
	return booking, nil
}

func (o *BookingOrchestrator) ListBookingsForUser(ctx context.Context, userID string, page, limit int) ([]*domain.Booking, int, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	bookings, total, err := o.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, kinderr.Internal("failed to list bookings for user", err)
	}
	return bookings, total, nil
}

// drive advances a booking from whatever saga_step it currently holds. It
// is the body of both the request path (CreateBooking) and the recovery
// worker's recovery pass — the state machine does not care who
// calls it, only where the booking currently is. fromRecovery only sets
// recovery_confirmed on the published BookingConfirmed event.
func (o *BookingOrchestrator) drive(ctx context.Context, booking *domain.Booking, fromRecovery bool) (*Result, error) {
	switch booking.SagaStep {
	case types.SagaStepReserveSent:
		return o.stepReserve(ctx, booking, fromRecovery)
	case types.SagaStepReserveOK, types.SagaStepPaymentSent:
		return o.stepCharge(ctx, booking, fromRecovery)
	default:
		return &Result{Booking: booking, Outcome: terminalOutcome(booking)}, nil
	}
}

func terminalOutcome(b *domain.Booking) Outcome {
	if b.Status == types.BookingStatusConfirmed {
		return OutcomeConfirmed
	}
	return OutcomeBusinessFailure
}

// stepReserve implements the RESERVE_SENT leg: call Inventory.reserve,
// advance to RESERVE_OK on success, and fall straight through to charge.
func (o *BookingOrchestrator) stepReserve(ctx context.Context, booking *domain.Booking, fromRecovery bool) (*Result, error) {
	resp, err := o.inventory.Reserve(ctx, types.ReserveRequest{
		RoomID:         booking.RoomID,
		CheckIn:        booking.CheckIn,
		CheckOut:       booking.CheckOut,
		Quantity:       booking.Quantity,
		IdempotencyKey: booking.IdempotencyKey(),
	})
	if err != nil {
		return o.handleRPCFailure(ctx, booking, err, types.SagaStepReserveSent)
	}

	booking.TotalPrice = resp.TotalPrice
	booking.AdvanceTo(types.SagaStepReserveOK)
	if saveErr := o.save(ctx, booking); saveErr != nil {
		return nil, saveErr
	}

	return o.stepCharge(ctx, booking, fromRecovery)
}

// stepCharge implements the RESERVE_OK/PAYMENT_SENT leg: write PAYMENT_SENT
// before the call if not already there, call Payment.process, and either
// confirm or compensate on the outcome.
func (o *BookingOrchestrator) stepCharge(ctx context.Context, booking *domain.Booking, fromRecovery bool) (*Result, error) {
	if booking.SagaStep != types.SagaStepPaymentSent {
		booking.AdvanceTo(types.SagaStepPaymentSent)
		if saveErr := o.save(ctx, booking); saveErr != nil {
			return nil, saveErr
		}
	}

	resp, err := o.payment.Charge(ctx, types.ChargeRequest{
		UserID:         booking.UserID,
		BookingID:      booking.ID,
		Amount:         booking.TotalPrice,
		Method:         "credit_card",
		IdempotencyKey: booking.IdempotencyKey(),
	})
	if err != nil {
		return o.handleRPCFailure(ctx, booking, err, types.SagaStepPaymentSent)
	}

	if resp.Status != types.PaymentStatusSuccess {
		return o.compensateAndFail(ctx, booking, kinderr.PaymentDeclined(resp.Message))
	}

	booking.PaymentID = resp.PaymentID
	return o.confirmAndComplete(ctx, booking, fromRecovery)
}

// handleRPCFailure applies the clear/unclear classifier: an
// unclear or service-unavailable outcome leaves the booking exactly where
// it is for the recovery worker; everything else is a clear failure and
// compensates immediately.
func (o *BookingOrchestrator) handleRPCFailure(ctx context.Context, booking *domain.Booking, err error, attemptedStep types.SagaStep) (*Result, error) {
	if kinderr.Is(err, kinderr.UnclearRemoteOutcome) || kinderr.Is(err, kinderr.ServiceUnavailable) {
		log.Warn().Str("booking_id", booking.ID).Str("saga_step", string(attemptedStep)).Err(err).
			Msg("remote outcome unclear, leaving booking for recovery")
		return &Result{Booking: booking, Outcome: OutcomePendingUnclear}, nil
	}
	return o.compensateAndFail(ctx, booking, err)
}

// compensateAndFail is only reached on a clear, definite negative — the
// remote has stated its outcome, so releasing is always safe here (the
// PAYMENT_SENT give-up asymmetry is about *unclear* outcomes,
// not explicit declines).
func (o *BookingOrchestrator) compensateAndFail(ctx context.Context, booking *domain.Booking, cause error) (*Result, error) {
	if relErr := o.inventory.Release(ctx, types.ReleaseRequest{
		RoomID:    booking.RoomID,
		CheckIn:   booking.CheckIn,
		CheckOut:  booking.CheckOut,
		Quantity:  booking.Quantity,
		BookingID: booking.ID,
	}); relErr != nil {
		log.Error().Err(relErr).Str("booking_id", booking.ID).Msg("release during compensation failed")
	}

	booking.MarkFailed()
	if err := o.save(ctx, booking); err != nil {
		return nil, err
	}
	return &Result{Booking: booking, Outcome: OutcomeBusinessFailure, Err: cause}, nil
}

// confirmAndComplete deletes the holds and marks CONFIRMED. A confirm RPC
// failure is logged, not fatal: the charge has already succeeded, so the
// booking stays CONFIRMED and any leftover hold is cleaned up later by the
// reaper — never silently losing the money already taken.
func (o *BookingOrchestrator) confirmAndComplete(ctx context.Context, booking *domain.Booking, recoveryConfirmed bool) (*Result, error) {
	if err := o.inventory.Confirm(ctx, booking.ID); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("confirm call failed after successful charge")
	}

	booking.MarkConfirmed()
	if err := o.save(ctx, booking); err != nil {
		return nil, err
	}

	event := events.BookingConfirmed{
		BookingID:         booking.ID,
		UserID:            booking.UserID,
		RoomID:            booking.RoomID,
		CheckIn:           booking.CheckIn,
		CheckOut:          booking.CheckOut,
		TotalPrice:        booking.TotalPrice,
		Status:            string(booking.Status),
		RecoveryConfirmed: recoveryConfirmed,
	}
	if o.publisher != nil {
		if err := o.publisher.PublishBookingConfirmed(event); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking confirmed event")
		}
	}

	return &Result{Booking: booking, Outcome: OutcomeConfirmed}, nil
}

// save writes the booking's current saga fields under a row-level lock, so
// the orchestrator and the recovery worker never advance the same booking
// concurrently.
func (o *BookingOrchestrator) save(ctx context.Context, booking *domain.Booking) error {
	tx, err := o.repo.BeginTx(ctx)
	if err != nil {
		return kinderr.Internal("failed to begin booking save transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := o.repo.GetForUpdate(ctx, tx, booking.ID); err != nil {
		return kinderr.Internal("failed to lock booking row", err)
	}
	booking.UpdatedAt = time.Now()
	if err := o.repo.Update(ctx, tx, booking); err != nil {
		return kinderr.Internal("failed to persist booking step", err)
	}
	return tx.Commit()
}

// GiveUp implements the asymmetric give-up policy: safe to release
// at RESERVE_SENT, never at PAYMENT_SENT since the charge may have gone
// through.
func (o *BookingOrchestrator) GiveUp(ctx context.Context, booking *domain.Booking) (*Result, error) {
	if booking.SagaStep == types.SagaStepPaymentSent {
		log.Warn().Str("booking_id", booking.ID).
			Msg("giving up on booking stuck at payment_sent without releasing inventory — charge outcome unknown, needs operator reconciliation")
	} else {
		if err := o.inventory.Release(ctx, types.ReleaseRequest{
			RoomID:    booking.RoomID,
			CheckIn:   booking.CheckIn,
			CheckOut:  booking.CheckOut,
			Quantity:  booking.Quantity,
			BookingID: booking.ID,
		}); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("release during give-up failed")
		}
	}

	booking.MarkFailed()
	if err := o.save(ctx, booking); err != nil {
		return nil, err
	}
	return &Result{Booking: booking, Outcome: OutcomeBusinessFailure}, nil
}

// RecoverStuck is one recovery-worker tick: scan bookings stuck
// past stuckThreshold, give up on the ones additionally past
// giveUpThreshold, and advance the rest.
func (o *BookingOrchestrator) RecoverStuck(ctx context.Context, stuckThreshold, giveUpThreshold time.Duration) (advanced, givenUp int, err error) {
	bookings, err := o.repo.StuckBookings(ctx, stuckThreshold)
	if err != nil {
		return 0, 0, kinderr.Internal("failed to scan stuck bookings", err)
	}

	now := time.Now()
	for _, booking := range bookings {
		if now.Sub(booking.UpdatedAt) >= giveUpThreshold {
			if _, giveErr := o.GiveUp(ctx, booking); giveErr != nil {
				log.Error().Err(giveErr).Str("booking_id", booking.ID).Msg("give-up failed")
				continue
			}
			givenUp++
			continue
		}

		if _, advErr := o.drive(ctx, booking, true); advErr != nil {
			log.Error().Err(advErr).Str("booking_id", booking.ID).Msg("recovery advance failed")
			continue
		}
		advanced++
	}
	return advanced, givenUp, nil
}
