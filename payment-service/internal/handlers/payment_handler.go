package handlers

import (
	"github.com/distributed-hotel-saga/payment-service/internal/service"
	sharedHTTP "github.com/distributed-hotel-saga/shared-domain/http"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/types"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) HealthCheck(c *fiber.Ctx) error {
	return sharedHTTP.SuccessResponse(c, "payment service is healthy", fiber.Map{
		"service": "payment-service",
		"status":  "healthy",
	})
}

// Charge handles POST /api/v1/payments.
func (h *PaymentHandler) Charge(c *fiber.Ctx) error {
	var req types.ChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return sharedHTTP.BadRequestResponse(c, "invalid request body", nil)
	}

	resp, err := h.paymentService.Charge(c.Context(), req)
	if err != nil {
		return kinderr.WriteResponse(c, err)
	}
	return sharedHTTP.CreatedResponse(c, "charge processed", resp)
}

// GetByBookingID handles GET /api/v1/payments/:booking_id, the reconciliation
// lookup added for operators to reconcile a booking's payment state.
func (h *PaymentHandler) GetByBookingID(c *fiber.Ctx) error {
	bookingID := c.Params("booking_id")

	payment, err := h.paymentService.GetByBookingID(c.Context(), bookingID)
	if err != nil {
		return kinderr.WriteResponse(c, err)
	}

	view := PaymentView{
		ID:            payment.ID,
		BookingID:     payment.BookingID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		Status:        string(payment.Status),
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
	return sharedHTTP.SuccessResponse(c, "payment retrieved", view)
}
