package handler

import (
	"go-commodity-ledger/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps service errors to HTTP statuses: NotFound -> 404,
// other business errors -> 400, anything else is a storage failure ->
// 500. Business messages pass through to the client unchanged.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case apperror.IsNotFound(err):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case apperror.IsBusiness(err):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
