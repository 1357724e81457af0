package service

import (
	"errors"
	"fmt"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
	"go-commodity-ledger/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommodityService is plain administration around the ledger: name,
// unit and active flag. The one ledger-adjacent rule lives in Delete.
type CommodityService interface {
	Create(req *model.Commodity) error
	Update(id uuid.UUID, req *model.Commodity) (*model.Commodity, error)
	FindAll() ([]model.Commodity, error)
	FindOne(id uuid.UUID) (*model.Commodity, error)
	Delete(id uuid.UUID) (bool, error)
}

type commodityService struct {
	commodityRepo repository.CommodityRepository
}

func NewCommodityService(commodityRepo repository.CommodityRepository) CommodityService {
	return &commodityService{commodityRepo: commodityRepo}
}

func (s *commodityService) Create(req *model.Commodity) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", apperror.ErrValidation, first.FailedField, first.Tag)
	}

	existing, _ := s.commodityRepo.FindByName(req.Name)
	if existing != nil && existing.ID != uuid.Nil {
		return apperror.ErrCommodityNameExists
	}

	return s.commodityRepo.Create(req)
}

func (s *commodityService) Update(id uuid.UUID, req *model.Commodity) (*model.Commodity, error) {
	existing, err := s.commodityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCommodityNotFound
		}
		return nil, err
	}

	if req.Name != existing.Name {
		other, _ := s.commodityRepo.FindByName(req.Name)
		if other != nil && other.ID != uuid.Nil && other.ID != id {
			return nil, apperror.ErrCommodityNameExists
		}
	}

	existing.Name = req.Name
	existing.Unit = req.Unit
	existing.IsActive = req.IsActive
	if err := s.commodityRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *commodityService) FindAll() ([]model.Commodity, error) {
	return s.commodityRepo.FindAll()
}

func (s *commodityService) FindOne(id uuid.UUID) (*model.Commodity, error) {
	commodity, err := s.commodityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCommodityNotFound
		}
		return nil, err
	}
	return commodity, nil
}

// Delete refuses to remove a commodity that buy history still
// references; the ledger's math would lose its basis otherwise.
func (s *commodityService) Delete(id uuid.UUID) (bool, error) {
	if _, err := s.commodityRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperror.ErrCommodityNotFound
		}
		return false, err
	}

	count, err := s.commodityRepo.CountBuyHistories(id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, apperror.ErrCommodityInUse
	}

	if err := s.commodityRepo.Delete(id); err != nil {
		return false, fmt.Errorf("failed to delete commodity: %w", err)
	}
	return true, nil
}
