package repository

import (
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockAssetRepository holds the current quantity per commodity. All
// mutating methods take the ambient transaction handle and never
// commit or roll back themselves; the ledger services own the
// transaction boundary.
type StockAssetRepository interface {
	FindByCommodity(commodityID uuid.UUID) (*model.StockAsset, error)
	// FindByCommodityForUpdate locks the row (SELECT ... FOR UPDATE) so
	// the read-modify-write inside one mutation is serialized against
	// concurrent mutations of the same commodity.
	FindByCommodityForUpdate(tx *gorm.DB, commodityID uuid.UUID) (*model.StockAsset, error)
	FindAll() ([]model.StockAsset, error)
	CreateOrUpdate(tx *gorm.DB, commodityID uuid.UUID, delta money.Amount) error
	SetQuantity(tx *gorm.DB, id uuid.UUID, qty money.Amount) (*model.StockAsset, error)
}

type stockAssetRepo struct {
	db *gorm.DB
}

func NewStockAssetRepo(db *gorm.DB) StockAssetRepository {
	return &stockAssetRepo{db}
}

func (r *stockAssetRepo) FindByCommodity(commodityID uuid.UUID) (*model.StockAsset, error) {
	var asset model.StockAsset
	err := r.db.Preload("Commodity").First(&asset, "commodity_id = ?", commodityID).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *stockAssetRepo) FindByCommodityForUpdate(tx *gorm.DB, commodityID uuid.UUID) (*model.StockAsset, error) {
	var asset model.StockAsset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&asset, "commodity_id = ?", commodityID).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *stockAssetRepo) FindAll() ([]model.StockAsset, error) {
	var assets []model.StockAsset
	err := r.db.Preload("Commodity").
		Joins("JOIN commodities ON commodities.id = stock_assets.commodity_id").
		Order("commodities.name ASC").
		Find(&assets).Error
	return assets, err
}

// CreateOrUpdate adds delta to an existing row or creates one with
// qty = delta. Buy-creation path only; stock only grows here.
func (r *stockAssetRepo) CreateOrUpdate(tx *gorm.DB, commodityID uuid.UUID, delta money.Amount) error {
	var asset model.StockAsset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&asset, "commodity_id = ?", commodityID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			asset = model.StockAsset{CommodityID: commodityID, Qty: delta}
			return tx.Create(&asset).Error
		}
		return err
	}
	return tx.Model(&asset).Update("qty", asset.Qty.Add(delta)).Error
}

// SetQuantity overwrites the quantity. The caller supplies an already
// validated (>= 0) value.
func (r *stockAssetRepo) SetQuantity(tx *gorm.DB, id uuid.UUID, qty money.Amount) (*model.StockAsset, error) {
	var asset model.StockAsset
	if err := tx.First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&asset).Update("qty", qty).Error; err != nil {
		return nil, err
	}
	asset.Qty = qty
	return &asset, nil
}
