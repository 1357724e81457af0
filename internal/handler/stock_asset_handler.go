package handler

import (
	"go-commodity-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StockAssetHandler exposes read-only stock snapshots. Mutations go
// through the ledger services only.
type StockAssetHandler struct {
	service service.StockAssetService
}

func NewStockAssetHandler(s service.StockAssetService) *StockAssetHandler {
	return &StockAssetHandler{service: s}
}

func (h *StockAssetHandler) GetAll(c *fiber.Ctx) error {
	assets, err := h.service.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(assets)
}

func (h *StockAssetHandler) GetByCommodity(c *fiber.Ctx) error {
	commodityID, err := parseUUIDParam(c, "commodityId")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	asset, err := h.service.FindByCommodity(commodityID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(asset)
}
