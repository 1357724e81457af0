package repository

import (
	"go-commodity-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SellHistoryRepository interface {
	Create(tx *gorm.DB, history *model.SellHistory) error
	FindByID(id uuid.UUID) (*model.SellHistory, error)
	// FindByIDForUpdate locks the history row and reads it through the
	// ambient transaction, so corrective mutations of the same row are
	// serialized and the before-image is never stale.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.SellHistory, error)
	FindAll() ([]model.SellHistory, error)
	FindByCommodity(commodityID uuid.UUID) ([]model.SellHistory, error)
	Update(tx *gorm.DB, history *model.SellHistory) error
	SoftDelete(tx *gorm.DB, id uuid.UUID) error
	HistoryAggregates
}

type sellHistoryRepo struct {
	db *gorm.DB
	historyAgg
}

func NewSellHistoryRepo(db *gorm.DB) SellHistoryRepository {
	return &sellHistoryRepo{db: db, historyAgg: historyAgg{db: db, table: "sell_histories"}}
}

func (r *sellHistoryRepo) Create(tx *gorm.DB, history *model.SellHistory) error {
	return tx.Create(history).Error
}

func (r *sellHistoryRepo) FindByID(id uuid.UUID) (*model.SellHistory, error) {
	var history model.SellHistory
	err := r.db.Preload("Commodity").First(&history, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *sellHistoryRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.SellHistory, error) {
	var history model.SellHistory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&history, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *sellHistoryRepo) FindAll() ([]model.SellHistory, error) {
	var histories []model.SellHistory
	err := r.db.Preload("Commodity").Order("date DESC, created_at DESC").Find(&histories).Error
	return histories, err
}

func (r *sellHistoryRepo) FindByCommodity(commodityID uuid.UUID) ([]model.SellHistory, error) {
	var histories []model.SellHistory
	err := r.db.Preload("Commodity").
		Where("commodity_id = ?", commodityID).
		Order("date DESC").
		Find(&histories).Error
	return histories, err
}

func (r *sellHistoryRepo) Update(tx *gorm.DB, history *model.SellHistory) error {
	return tx.Save(history).Error
}

func (r *sellHistoryRepo) SoftDelete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.SellHistory{}, "id = ?", id).Error
}
