package handlers

import (
	"github.com/distributed-hotel-saga/inventory-service/internal/service"
	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	sharedHTTP "github.com/distributed-hotel-saga/shared-domain/http"
	"github.com/distributed-hotel-saga/shared-domain/types"
	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) HealthCheck(c *fiber.Ctx) error {
	return sharedHTTP.SuccessResponse(c, "Inventory service is healthy", fiber.Map{
		"service": "inventory-service",
		"status":  "healthy",
	})
}

func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var req types.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return sharedHTTP.BadRequestResponse(c, "invalid reserve request body", nil)
	}

	resp, err := h.inventoryService.Reserve(c.Context(), req)
	if err != nil {
		return kinderr.WriteResponse(c, err)
	}

	return sharedHTTP.CreatedResponse(c, "reservation created", resp)
}

func (h *InventoryHandler) Confirm(c *fiber.Ctx) error {
	bookingID := c.Params("booking_id")
	if bookingID == "" {
		return sharedHTTP.BadRequestResponse(c, "booking_id is required", nil)
	}

	if err := h.inventoryService.Confirm(c.Context(), bookingID); err != nil {
		return kinderr.WriteResponse(c, err)
	}

	return sharedHTTP.SuccessResponse(c, "reservation confirmed", nil)
}

func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var req types.ReleaseRequest
	if err := c.BodyParser(&req); err != nil {
		return sharedHTTP.BadRequestResponse(c, "invalid release request body", nil)
	}

	if err := h.inventoryService.Release(c.Context(), req); err != nil {
		return kinderr.WriteResponse(c, err)
	}

	return sharedHTTP.SuccessResponse(c, "reservation released", nil)
}
