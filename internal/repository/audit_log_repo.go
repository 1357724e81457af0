package repository

import (
	"go-commodity-ledger/internal/model"

	"gorm.io/gorm"
)

// AuditLogRepository is an append-only sink. Entries are written inside
// the same transaction as the mutation they describe and are never
// updated or deleted.
type AuditLogRepository interface {
	Store(tx *gorm.DB, entry *model.AuditLog) error
	FindAll() ([]model.AuditLog, error)
}

type auditLogRepo struct {
	db *gorm.DB
}

func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db}
}

func (r *auditLogRepo) Store(tx *gorm.DB, entry *model.AuditLog) error {
	return tx.Create(entry).Error
}

func (r *auditLogRepo) FindAll() ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.Preload("User").Order("created_at DESC").Find(&entries).Error
	return entries, err
}
