package handler

import (
	"go-commodity-ledger/internal/middleware"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BuyHistoryHandler struct {
	service service.BuyHistoryService
}

func NewBuyHistoryHandler(s service.BuyHistoryService) *BuyHistoryHandler {
	return &BuyHistoryHandler{service: s}
}

func (h *BuyHistoryHandler) Store(c *fiber.Ctx) error {
	var req model.HistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	history, err := h.service.Store(&req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Buy history created", "data": history})
}

func (h *BuyHistoryHandler) Update(c *fiber.Ctx) error {
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
	return c.JSON(fiber.Map{"message": "Buy history updated", "data": history})
}

func (h *BuyHistoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	ok, err := h.service.Delete(id, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Buy history deleted", "success": ok})
}

func (h *BuyHistoryHandler) GetAll(c *fiber.Ctx) error {
	histories, err := h.service.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(histories)
}

func (h *BuyHistoryHandler) GetOne(c *fiber.Ctx) error {
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

func (h *BuyHistoryHandler) GetByCommodity(c *fiber.Ctx) error {
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
