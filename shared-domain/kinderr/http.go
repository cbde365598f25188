package kinderr

import (
	"github.com/distributed-hotel-saga/shared-domain/http"
	"github.com/gofiber/fiber/v2"
)

// WriteResponse maps a kinderr.Error (or any error) onto the shared
// APIResponse envelope with the right HTTP status for its Kind.
func WriteResponse(c *fiber.Ctx, err error) error {
	ke, ok := err.(*Error)
	if !ok {
		return http.InternalServerErrorResponse(c, err.Error(), nil)
	}

	details := map[string]interface{}{"code": string(ke.code)}

	switch ke.kind {
	case BusinessError:
		switch ke.code {
		case CodeResourceNotFound:
			return http.NotFoundResponse(c, ke.message)
		case CodeIdempotencyConflict:
			return http.ConflictResponse(c, ke.message, details)
		case CodeInvalidRequest:
			return http.BadRequestResponse(c, ke.message, details)
		default:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"message": ke.message,
				"error": fiber.Map{
					"code":    string(ke.code),
					"message": ke.message,
				},
			})
		}
	case ServiceUnavailable:
		return http.ServiceUnavailableResponse(c, ke.message, details)
	case UnclearRemoteOutcome, PendingUnclear:
		return http.AcceptedResponse(c, "being processed", nil)
	default:
		return http.InternalServerErrorResponse(c, ke.message, details)
	}
}
