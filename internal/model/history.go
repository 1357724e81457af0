package model

import (
	"time"

	"github.com/google/uuid"

	"go-commodity-ledger/pkg/money"
)

// BuyHistory is one purchase of a commodity. Append-mostly; update and
// delete are corrective operations handled by the ledger services.
type BuyHistory struct {
	BaseModel
	CommodityID uuid.UUID    `gorm:"type:uuid;not null;index" json:"commodity_id"`
	Commodity   *Commodity   `json:"commodity,omitempty" validate:"-"`
	Date        time.Time    `gorm:"type:date;not null" json:"date"`
	Qty         money.Amount `gorm:"type:decimal(14,2);not null" json:"qty"`
	TotalPrice  money.Amount `gorm:"type:decimal(14,2);not null" json:"total_price"`
	Memo        string       `json:"memo"`
}

// SellHistory is one sale of a commodity. Same shape as BuyHistory but
// kept as its own table; the two sides aggregate independently.
type SellHistory struct {
	BaseModel
	CommodityID uuid.UUID    `gorm:"type:uuid;not null;index" json:"commodity_id"`
	Commodity   *Commodity   `json:"commodity,omitempty" validate:"-"`
	Date        time.Time    `gorm:"type:date;not null" json:"date"`
	Qty         money.Amount `gorm:"type:decimal(14,2);not null" json:"qty"`
	TotalPrice  money.Amount `gorm:"type:decimal(14,2);not null" json:"total_price"`
	Memo        string       `json:"memo"`
}

// HistoryRequest is the boundary DTO for creating or updating a buy or
// sell history row. Qty and TotalPrice arrive as decimal strings with
// at most 2 fractional digits and must be positive.
type HistoryRequest struct {
	CommodityID uuid.UUID `json:"commodity_id" validate:"uuid_required"`
	Date        string    `json:"date" validate:"required,datetime=2006-01-02"`
	Qty         string    `json:"qty" validate:"required,decimal2dp"`
	TotalPrice  string    `json:"total_price" validate:"required,decimal2dp"`
	Memo        string    `json:"memo"`
}

// HistoryView flattens a history row with its commodity for list and
// detail responses.
type HistoryView struct {
	ID            uuid.UUID    `json:"id"`
	CommodityID   uuid.UUID    `json:"commodity_id"`
	CommodityName string       `json:"commodity_name"`
	CommodityUnit string       `json:"commodity_unit"`
	Date          string       `json:"date"`
	Qty           money.Amount `json:"qty"`
	TotalPrice    money.Amount `json:"total_price"`
	Memo          string       `json:"memo"`
}

// CommodityHistoryView groups one commodity's history rows with totals.
type CommodityHistoryView struct {
	CommodityID   uuid.UUID     `json:"commodity_id"`
	CommodityName string        `json:"commodity_name"`
	TotalQty      string        `json:"total_qty"`
	TotalPrice    money.Amount  `json:"total_price"`
	Histories     []HistoryView `json:"histories"`
}
