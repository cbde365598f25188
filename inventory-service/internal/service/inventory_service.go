package service

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/distributed-hotel-saga/inventory-service/internal/domain"
	"github.com/distributed-hotel-saga/inventory-service/internal/repository"
	"github.com/distributed-hotel-saga/shared-domain/idempotency"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/lock"
	"github.com/distributed-hotel-saga/shared-domain/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var bookingKeyPattern = regexp.MustCompile(`^booking-(.+)$`)

// Locker is the narrow surface InventoryService needs from the distributed
// lock; *lock.RoomLock satisfies it, tests substitute a fake.
type Locker interface {
	Acquire(ctx context.Context, roomID, firstDate string) (*lock.Handle, error)
}

type InventoryService struct {
	repo       *repository.InventoryRepository
	idempStore idempotency.Store
	cache      idempotency.Cache
	roomLock   Locker
	holdTTL    time.Duration
	cacheTTL   time.Duration
}

func NewInventoryService(
	repo *repository.InventoryRepository,
	idempStore idempotency.Store,
	cache idempotency.Cache,
	roomLock Locker,
	holdTTL time.Duration,
	cacheTTL time.Duration,
) *InventoryService {
	return &InventoryService{
		repo:       repo,
		idempStore: idempStore,
		cache:      cache,
		roomLock:   roomLock,
		holdTTL:    holdTTL,
		cacheTTL:   cacheTTL,
	}
}

// Reserve runs the idempotency lookup, guarded decrement per
// night under a room lock, optional hold creation, and a single
// transactional commit of the effect plus its idempotency record.
func (s *InventoryService) Reserve(ctx context.Context, req types.ReserveRequest) (*types.ReserveResponse, error) {
	if req.IdempotencyKey != "" {
		body, found, err := idempotency.Lookup(ctx, s.cache, s.idempStore, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if found {
			var resp types.ReserveResponse
			if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
				return nil, kinderr.Internal("failed to decode cached reserve response", jsonErr)
			}
			return &resp, nil
		}
	}

	nights := domain.Nights(req.CheckIn, req.CheckOut)
	if len(nights) == 0 {
		return nil, kinderr.New(kinderr.BusinessError, kinderr.CodeInvalidRequest, "check_out must be after check_in")
	}

	firstDate := nights[0].Format("2006-01-02")
	handle, err := s.roomLock.Acquire(ctx, req.RoomID, firstDate)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, kinderr.Internal("failed to begin reserve transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var totalPrice float64
	for _, night := range nights {
		ok, decErr := s.repo.GuardedDecrement(ctx, tx, req.RoomID, night, req.Quantity)
		if decErr != nil {
			return nil, kinderr.Internal("guarded decrement failed", decErr)
		}
		if !ok {
			return nil, kinderr.InsufficientAvailability()
		}

		price, priceErr := s.repo.PricePerNight(ctx, tx, req.RoomID, night)
		if priceErr != nil {
			return nil, kinderr.Internal("failed to read price per night", priceErr)
		}
		totalPrice += price * float64(req.Quantity)
	}

	reservationID := uuid.New().String()

	if m := bookingKeyPattern.FindStringSubmatch(req.IdempotencyKey); m != nil {
		expiresAt := time.Now().Add(s.holdTTL)
		for _, night := range nights {
			hold := &domain.ReservationHold{
				BookingID:        m[1],
				RoomID:           req.RoomID,
				AvailabilityDate: night,
				Quantity:         req.Quantity,
				ExpiresAt:        expiresAt,
			}
			if holdErr := s.repo.InsertHold(ctx, tx, hold); holdErr != nil {
				return nil, kinderr.Internal("failed to insert reservation hold", holdErr)
			}
		}
	}

	response := &types.ReserveResponse{
		ReservationID: reservationID,
		TotalPrice:    totalPrice,
		Status:        types.ReservationStatusReserved,
	}

	body, err := idempotency.Commit(ctx, tx, s.idempStore, req.IdempotencyKey, response)
	if err != nil {
		if err == idempotency.ErrConflict {
			return nil, kinderr.IdempotencyConflict()
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, kinderr.Internal("failed to commit reserve transaction", err)
	}
	committed = true

	idempotency.WarmCache(ctx, s.cache, req.IdempotencyKey, body, s.cacheTTL)

	return response, nil
}

// Confirm deletes every hold for a booking. Idempotent: a second call
// against an already-confirmed booking deletes zero rows and succeeds.
func (s *InventoryService) Confirm(ctx context.Context, bookingID string) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return kinderr.Internal("failed to begin confirm transaction", err)
	}
	defer tx.Rollback()

	if _, err := s.repo.DeleteHoldsByBookingID(ctx, tx, bookingID); err != nil {
		return kinderr.Internal("failed to delete holds on confirm", err)
	}

	if err := tx.Commit(); err != nil {
		return kinderr.Internal("failed to commit confirm transaction", err)
	}
	return nil
}

// Release is the compensation path. When bookingID is given, the delete's
// own rows-affected count — not a separate pre-check — decides whether
// stock gets credited back: deleting zero holds means they were already
// gone (already released or confirmed), so a double release with the same
// booking_id is a no-op, never an over-credit. A pre-check read before this
// same transaction's delete would leave a window where two concurrent
// releases for the same booking_id both observe holds present and both
// credit stock, so the check and the delete happen as one atomic statement.
// Without a bookingID nothing gates the credit: every call increments each
// night again, so the caller must not repeat such a release.
func (s *InventoryService) Release(ctx context.Context, req types.ReleaseRequest) error {
	nights := domain.Nights(req.CheckIn, req.CheckOut)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return kinderr.Internal("failed to begin release transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if req.BookingID != "" {
		deleted, delErr := s.repo.DeleteHoldsByBookingID(ctx, tx, req.BookingID)
		if delErr != nil {
			return kinderr.Internal("failed to delete holds on release", delErr)
		}
		if deleted == 0 {
			log.Info().Str("booking_id", req.BookingID).Msg("release no-op: holds already gone")
			if err := tx.Commit(); err != nil {
				return kinderr.Internal("failed to commit release transaction", err)
			}
			committed = true
			return nil
		}
	}

	for _, night := range nights {
		if err := s.repo.IncrementAvailability(ctx, tx, req.RoomID, night, req.Quantity); err != nil {
			return kinderr.Internal("failed to credit availability on release", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return kinderr.Internal("failed to commit release transaction", err)
	}
	committed = true
	return nil
}

// ExpireHolds is the reaper body: credit stock back for every expired hold
// and delete it, one hold per transaction so a failure mid-scan only loses
// progress on that hold, not the whole batch.
func (s *InventoryService) ExpireHolds(ctx context.Context) (int, error) {
	holds, err := s.repo.ExpiredHolds(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, hold := range holds {
		if err := s.expireOne(ctx, hold); err != nil {
			log.Error().Err(err).Str("hold_id", hold.ID).Msg("failed to expire hold")
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *InventoryService) expireOne(ctx context.Context, hold *domain.ReservationHold) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.repo.IncrementAvailability(ctx, tx, hold.RoomID, hold.AvailabilityDate, hold.Quantity); err != nil {
		return err
	}
	if err := s.repo.DeleteHold(ctx, tx, hold.ID); err != nil {
		return err
	}
	return tx.Commit()
}
