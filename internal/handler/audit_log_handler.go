package handler

import (
	"go-commodity-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuditLogHandler lists the append-only mutation trail. There are no
// write endpoints; entries only appear through ledger transactions.
type AuditLogHandler struct {
	service service.AuditLogService
}

func NewAuditLogHandler(s service.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{service: s}
}

func (h *AuditLogHandler) GetAll(c *fiber.Ctx) error {
	entries, err := h.service.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
