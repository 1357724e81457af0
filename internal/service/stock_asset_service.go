package service

import (
	"errors"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockAssetService exposes read-only stock snapshots. Stock only
// moves through the ledger services.
type StockAssetService interface {
	FindAll() ([]model.StockAsset, error)
	FindByCommodity(commodityID uuid.UUID) (*model.StockAsset, error)
}

type stockAssetService struct {
	stockRepo repository.StockAssetRepository
}

func NewStockAssetService(stockRepo repository.StockAssetRepository) StockAssetService {
	return &stockAssetService{stockRepo: stockRepo}
}

func (s *stockAssetService) FindAll() ([]model.StockAsset, error) {
	return s.stockRepo.FindAll()
}

func (s *stockAssetService) FindByCommodity(commodityID uuid.UUID) (*model.StockAsset, error) {
	asset, err := s.stockRepo.FindByCommodity(commodityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrStockAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}
