package handlers

import (
	"strconv"

	"github.com/distributed-hotel-saga/booking-service/internal/domain"
	"github.com/distributed-hotel-saga/booking-service/internal/service"
	sharedHTTP "github.com/distributed-hotel-saga/shared-domain/http"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	orchestrator *service.BookingOrchestrator
}

func NewBookingHandler(orchestrator *service.BookingOrchestrator) *BookingHandler {
	return &BookingHandler{orchestrator: orchestrator}
}

func (h *BookingHandler) HealthCheck(c *fiber.Ctx) error {
	return sharedHTTP.SuccessResponse(c, "Booking service is healthy", fiber.Map{
		"service": "booking-service",
		"status":  "healthy",
	})
}

// CreateBooking maps the orchestrator's three-way result onto
// three distinct HTTP outcomes: 201 on confirmed, 202 on pending-unclear,
// and the kinderr-mapped status on a clear business failure.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req domain.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return sharedHTTP.BadRequestResponse(c, "invalid booking request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	result, err := h.orchestrator.CreateBooking(c.Context(), req)
	if err != nil {
		return kinderr.WriteResponse(c, err)
	}

	view := toBookingView(result.Booking)
	switch result.Outcome {
	case service.OutcomeConfirmed:
		return sharedHTTP.CreatedResponse(c, "booking confirmed", view)
	case service.OutcomePendingUnclear:
		return sharedHTTP.AcceptedResponse(c, "being processed", view)
	default:
		return kinderr.WriteResponse(c, result.Err)
	}
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return sharedHTTP.BadRequestResponse(c, "booking id is required", nil)
	}

	booking, err := h.orchestrator.GetBooking(c.Context(), id)
	if err != nil {
		return kinderr.WriteResponse(c, err)
	}

	return sharedHTTP.SuccessResponse(c, "booking retrieved", toBookingView(booking))
}

func (h *BookingHandler) ListBookingsForUser(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return sharedHTTP.BadRequestResponse(c, "user_id is required", nil)
	}

	page := 1
	limit := 10
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	bookings, total, err := h.orchestrator.ListBookingsForUser(c.Context(), userID, page, limit)
	if err != nil {
		return kinderr.WriteResponse(c, err)
	}

	views := make([]BookingView, len(bookings))
	for i, b := range bookings {
		views[i] = toBookingView(b)
	}

	return sharedHTTP.SuccessResponse(c, "bookings retrieved", fiber.Map{
		"bookings": views,
		"pagination": fiber.Map{
			"page":     page,
			"limit":    limit,
			"total":    total,
			"has_more": page*limit < total,
		},
	})
}
