package repository

import (
	"go-commodity-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BuyHistoryRepository interface {
	Create(tx *gorm.DB, history *model.BuyHistory) error
	FindByID(id uuid.UUID) (*model.BuyHistory, error)
	// FindByIDForUpdate locks the history row and reads it through the
	// ambient transaction, so corrective mutations of the same row are
	// serialized and the before-image is never stale.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.BuyHistory, error)
	FindAll() ([]model.BuyHistory, error)
	FindByCommodity(commodityID uuid.UUID) ([]model.BuyHistory, error)
	Update(tx *gorm.DB, history *model.BuyHistory) error
	SoftDelete(tx *gorm.DB, id uuid.UUID) error
	HistoryAggregates
}

type buyHistoryRepo struct {
	db *gorm.DB
	historyAgg
}

func NewBuyHistoryRepo(db *gorm.DB) BuyHistoryRepository {
	return &buyHistoryRepo{db: db, historyAgg: historyAgg{db: db, table: "buy_histories"}}
}

func (r *buyHistoryRepo) Create(tx *gorm.DB, history *model.BuyHistory) error {
	return tx.Create(history).Error
}

func (r *buyHistoryRepo) FindByID(id uuid.UUID) (*model.BuyHistory, error) {
	var history model.BuyHistory
	err := r.db.Preload("Commodity").First(&history, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *buyHistoryRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.BuyHistory, error) {
	var history model.BuyHistory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&history, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *buyHistoryRepo) FindAll() ([]model.BuyHistory, error) {
	var histories []model.BuyHistory
	err := r.db.Preload("Commodity").Order("date DESC, created_at DESC").Find(&histories).Error
	return histories, err
}

func (r *buyHistoryRepo) FindByCommodity(commodityID uuid.UUID) ([]model.BuyHistory, error) {
	var histories []model.BuyHistory
	err := r.db.Preload("Commodity").
		Where("commodity_id = ?", commodityID).
		Order("date DESC").
		Find(&histories).Error
	return histories, err
}

func (r *buyHistoryRepo) Update(tx *gorm.DB, history *model.BuyHistory) error {
	return tx.Save(history).Error
}

func (r *buyHistoryRepo) SoftDelete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.BuyHistory{}, "id = ?", id).Error
}
