package repository

import (
	"go-commodity-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommodityRepository interface {
	Create(commodity *model.Commodity) error
	FindAll() ([]model.Commodity, error)
	FindByID(id uuid.UUID) (*model.Commodity, error)
	FindByName(name string) (*model.Commodity, error)
	Update(commodity *model.Commodity) error
	Delete(id uuid.UUID) error
	CountBuyHistories(id uuid.UUID) (int64, error)
}

type commodityRepo struct {
	db *gorm.DB
}

func NewCommodityRepo(db *gorm.DB) CommodityRepository {
	return &commodityRepo{db}
}

func (r *commodityRepo) Create(commodity *model.Commodity) error {
	return r.db.Create(commodity).Error
}

func (r *commodityRepo) FindAll() ([]model.Commodity, error) {
	var commodities []model.Commodity
	err := r.db.Order("name ASC").Find(&commodities).Error
	return commodities, err
}

func (r *commodityRepo) FindByID(id uuid.UUID) (*model.Commodity, error) {
	var commodity model.Commodity
	err := r.db.First(&commodity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &commodity, nil
}

func (r *commodityRepo) FindByName(name string) (*model.Commodity, error) {
	var commodity model.Commodity
	err := r.db.First(&commodity, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &commodity, nil
}

func (r *commodityRepo) Update(commodity *model.Commodity) error {
	return r.db.Save(commodity).Error
}

func (r *commodityRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Commodity{}, "id = ?", id).Error
}

// CountBuyHistories counts non-deleted buy rows referencing the
// commodity. A commodity with history cannot be removed.
func (r *commodityRepo) CountBuyHistories(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.BuyHistory{}).Where("commodity_id = ?", id).Count(&count).Error
	return count, err
}
