package handler

import (
	"strconv"
	"time"

	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// parseParams reads filter/from/to query params. Defaults to filter=all;
// date_range requires explicit, well-formed from and to.
func parseParams(c *fiber.Ctx) (model.DashboardParams, bool) {
	params := model.DashboardParams{
		Filter: model.DashboardFilter(c.Query("filter", string(model.FilterAll))),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}
	if !params.Filter.Valid() {
		return params, false
	}
	if params.Filter == model.FilterDateRange {
		for _, raw := range []string{params.From, params.To} {
			if _, err := time.Parse(model.DateLayout, raw); err != nil {
				return params, false
			}
		}
	}
	return params, true
}

func (h *DashboardHandler) GetProfitLoss(c *fiber.Ctx) error {
	params, ok := parseParams(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid filter params"})
	}

	result, err := h.service.TotalProfitLoss(params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total_profit_loss": result})
}

func (h *DashboardHandler) GetStockAssets(c *fiber.Ctx) error {
	var commodityID *uuid.UUID
	if raw := c.Query("commodity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid commodity_id"})
		}
		commodityID = &id
	}

	result, err := h.service.TotalStockAssets(commodityID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total_stock_assets": result})
}

func (h *DashboardHandler) GetBuyTransactions(c *fiber.Ctx) error {
	params, ok := parseParams(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid filter params"})
	}

	result, err := h.service.TotalBuyTransactions(params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) GetSellTransactions(c *fiber.Ctx) error {
	params, ok := parseParams(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid filter params"})
	}

	result, err := h.service.TotalSellTransactions(params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) GetBuySellSeries(c *fiber.Ctx) error {
	params, ok := parseParams(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid filter params"})
	}

	granularity := model.DashboardGranularity(c.Query("granularity", string(model.GranularityDay)))
	if !granularity.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid granularity"})
	}
	metric := model.DashboardMetric(c.Query("metric", string(model.MetricValue)))
	if !metric.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid metric"})
	}

	result, err := h.service.BuySellSeries(params, granularity, metric)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) GetTopCommodities(c *fiber.Ctx) error {
	params, ok := parseParams(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid filter params"})
	}

	metric := model.DashboardMetric(c.Query("metric", string(model.MetricValue)))
	if !metric.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid metric"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "5"))

	result, err := h.service.TopCommodities(params, metric, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) GetRecentTransactions(c *fiber.Ctx) error {
	result, err := h.service.RecentTransactions()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": result})
}
