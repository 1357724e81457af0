package handler

import (
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CommodityHandler struct {
	service service.CommodityService
}

func NewCommodityHandler(s service.CommodityService) *CommodityHandler {
	return &CommodityHandler{service: s}
}

func (h *CommodityHandler) Create(c *fiber.Ctx) error {
	var commodity model.Commodity
	if err := c.BodyParser(&commodity); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.Create(&commodity); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Commodity created", "data": commodity})
}

func (h *CommodityHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var commodity model.Commodity
	if err := c.BodyParser(&commodity); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.Update(id, &commodity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Commodity updated", "data": updated})
}

func (h *CommodityHandler) GetAll(c *fiber.Ctx) error {
	commodities, err := h.service.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(commodities)
}

func (h *CommodityHandler) GetOne(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	commodity, err := h.service.FindOne(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(commodity)
}

func (h *CommodityHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	ok, err := h.service.Delete(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Commodity deleted", "success": ok})
}
