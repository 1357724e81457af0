package model

import (
	"github.com/google/uuid"

	"go-commodity-ledger/pkg/money"
)

// StockAsset is the single current-quantity record per commodity.
// Invariant: Qty never goes below zero, and equals the sum of
// non-deleted buy qty minus non-deleted sell qty. Only the ledger
// services mutate it, always inside a locked transaction.
type StockAsset struct {
	BaseModel
	CommodityID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"commodity_id"`
	Commodity   *Commodity   `json:"commodity,omitempty"`
	Qty         money.Amount `gorm:"type:decimal(14,2);not null" json:"qty"`
}

// StockAssetView is the dashboard snapshot row.
type StockAssetView struct {
	CommodityID   uuid.UUID    `json:"commodity_id"`
	CommodityName string       `json:"commodity_name"`
	CommodityUnit string       `json:"commodity_unit"`
	Qty           money.Amount `json:"qty"`
}
