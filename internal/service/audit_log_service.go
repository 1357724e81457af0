package service

import (
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
)

// AuditLogService lists the append-only mutation trail. Entries only
// appear through ledger transactions; there is no write path here.
type AuditLogService interface {
	FindAll() ([]model.AuditLog, error)
}

type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{auditRepo: auditRepo}
}

func (s *auditLogService) FindAll() ([]model.AuditLog, error) {
	return s.auditRepo.FindAll()
}
