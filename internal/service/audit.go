package service

import (
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// storeAudit appends one audit entry inside the caller's transaction.
// It runs after the stock update so a replay of the log always explains
// the stock's current value.
func storeAudit(
	tx *gorm.DB,
	repo repository.AuditLogRepository,
	userID uuid.UUID,
	domain model.AuditDomain,
	action model.AuditAction,
	payload model.AuditPayload,
) error {
	raw, err := payload.Marshal()
	if err != nil {
		return err
	}
	return repo.Store(tx, &model.AuditLog{
		UserID:  userID,
		Type:    domain,
		Action:  action,
		Payload: raw,
	})
}
