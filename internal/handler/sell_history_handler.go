package handler

import (
	"go-commodity-ledger/internal/middleware"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SellHistoryHandler struct {
	service service.SellHistoryService
}

func NewSellHistoryHandler(s service.SellHistoryService) *SellHistoryHandler {
	return &SellHistoryHandler{service: s}
}

func (h *SellHistoryHandler) Store(c *fiber.Ctx) error {
	var req model.HistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	history, err := h.service.Store(&req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sell history created", "data": history})
}

func (h *SellHistoryHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var req model.HistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	history, err := h.service.Update(id, &req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sell history updated", "data": history})
}

func (h *SellHistoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	ok, err := h.service.Delete(id, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sell history deleted", "success": ok})
}

func (h *SellHistoryHandler) GetAll(c *fiber.Ctx) error {
	histories, err := h.service.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(histories)
}

func (h *SellHistoryHandler) GetOne(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	history, err := h.service.FindOne(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

func (h *SellHistoryHandler) GetByCommodity(c *fiber.Ctx) error {
	commodityID, err := parseUUIDParam(c, "commodityId")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	view, err := h.service.FindByCommodity(commodityID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
