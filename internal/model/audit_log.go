package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditDomain string

const (
	AuditDomainBuy  AuditDomain = "buy"
	AuditDomainSell AuditDomain = "sell"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog is an immutable record of one ledger mutation, written in
// the same transaction as the mutation it describes. Rows are never
// updated or deleted.
type AuditLog struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User           `json:"user,omitempty"`
	Type      AuditDomain     `gorm:"type:varchar(10);not null" json:"type"`
	Action    AuditAction     `gorm:"type:varchar(10);not null" json:"action"`
	Payload   json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// AuditPayload is the before/after snapshot stored in Payload. Create
// carries only After, update both, delete After holding the row as it
// was before deletion.
type AuditPayload struct {
	Before interface{} `json:"before,omitempty"`
	After  interface{} `json:"after,omitempty"`
}

func (p AuditPayload) Marshal() (json.RawMessage, error) {
	return json.Marshal(p)
}
