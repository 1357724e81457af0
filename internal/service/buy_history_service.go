package service

import (
	"errors"
	"fmt"
	"time"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
	"go-commodity-ledger/internal/ws"
	"go-commodity-ledger/pkg/money"
	"go-commodity-ledger/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BuyHistoryService is the buy side of the stock-consistency ledger.
// Every mutation runs inside one transaction: stock quantity update,
// history row, and audit entry commit together or not at all.
type BuyHistoryService interface {
	Store(req *model.HistoryRequest, userID uuid.UUID) (*model.BuyHistory, error)
	Update(id uuid.UUID, req *model.HistoryRequest, userID uuid.UUID) (*model.BuyHistory, error)
	Delete(id uuid.UUID, userID uuid.UUID) (bool, error)
	FindAll() ([]model.HistoryView, error)
	FindOne(id uuid.UUID) (*model.HistoryView, error)
	FindByCommodity(commodityID uuid.UUID) (*model.CommodityHistoryView, error)
}

type buyHistoryService struct {
	tx            TxManager
	commodityRepo repository.CommodityRepository
	historyRepo   repository.BuyHistoryRepository
	stockRepo     repository.StockAssetRepository
	auditRepo     repository.AuditLogRepository
	wsHub         *ws.Hub
}

func NewBuyHistoryService(
	tx TxManager,
	commodityRepo repository.CommodityRepository,
	historyRepo repository.BuyHistoryRepository,
	stockRepo repository.StockAssetRepository,
	auditRepo repository.AuditLogRepository,
	hub *ws.Hub,
) BuyHistoryService {
	return &buyHistoryService{
		tx:            tx,
		commodityRepo: commodityRepo,
		historyRepo:   historyRepo,
		stockRepo:     stockRepo,
		auditRepo:     auditRepo,
		wsHub:         hub,
	}
}

// parseHistoryRequest validates the boundary DTO and converts the
// decimal strings and date before any ledger logic runs.
func parseHistoryRequest(req *model.HistoryRequest) (qty, price money.Amount, date time.Time, err error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		err = fmt.Errorf("%w: field '%s' failed on tag '%s'", apperror.ErrValidation, first.FailedField, first.Tag)
		return
	}
	if qty, err = money.Parse(req.Qty); err != nil {
		err = fmt.Errorf("%w: %v", apperror.ErrValidation, err)
		return
	}
	if price, err = money.Parse(req.TotalPrice); err != nil {
		err = fmt.Errorf("%w: %v", apperror.ErrValidation, err)
		return
	}
	if !qty.IsPositive() {
		err = fmt.Errorf("%w: qty must be greater than zero", apperror.ErrValidation)
		return
	}
	if !price.IsPositive() {
		err = fmt.Errorf("%w: total_price must be greater than zero", apperror.ErrValidation)
		return
	}
	if date, err = time.Parse(model.DateLayout, req.Date); err != nil {
		err = fmt.Errorf("%w: %v", apperror.ErrValidation, err)
	}
	return
}

func (s *buyHistoryService) Store(req *model.HistoryRequest, userID uuid.UUID) (*model.BuyHistory, error) {
	qty, price, date, err := parseHistoryRequest(req)
	if err != nil {
		return nil, err
	}

	var created *model.BuyHistory
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		commodity, err := s.commodityRepo.FindByID(req.CommodityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrCommodityNotFound
			}
			return fmt.Errorf("failed to store buy history: %w", err)
		}

		// A buy only ever grows stock; no quantity guard needed.
		if err := s.stockRepo.CreateOrUpdate(tx, commodity.ID, qty); err != nil {
			return fmt.Errorf("failed to store buy history: %w", err)
		}

		history := &model.BuyHistory{
			CommodityID: commodity.ID,
			Date:        date,
			Qty:         qty,
			TotalPrice:  price,
			Memo:        req.Memo,
		}
		if err := s.historyRepo.Create(tx, history); err != nil {
			return fmt.Errorf("failed to store buy history: %w", err)
		}

		if err := storeAudit(tx, s.auditRepo, userID, model.AuditDomainBuy, model.AuditActionCreate,
			model.AuditPayload{After: history}); err != nil {
			return fmt.Errorf("failed to store buy history: %w", err)
		}

		created = history
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate(created.CommodityID, "buy_created")
	return created, nil
}

func (s *buyHistoryService) Update(id uuid.UUID, req *model.HistoryRequest, userID uuid.UUID) (*model.BuyHistory, error) {
	newQty, price, date, err := parseHistoryRequest(req)
	if err != nil {
		return nil, err
	}

	var updated *model.BuyHistory
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		history, err := s.historyRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrBuyHistoryNotFound
			}
			return fmt.Errorf("failed to update buy history: %w", err)
		}
		before := *history

		// Only a quantity change touches stock; price, memo and date
		// corrections never do.
		if !newQty.Equal(history.Qty) {
			asset, err := s.stockRepo.FindByCommodityForUpdate(tx, history.CommodityID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.ErrStockAssetNotFound
				}
				return fmt.Errorf("failed to update buy history: %w", err)
			}

			delta := newQty.Sub(history.Qty)
			result := asset.Qty.Add(delta)
			if result.IsNegative() {
				return apperror.ErrInsufficientStock
			}
			if _, err := s.stockRepo.SetQuantity(tx, asset.ID, result); err != nil {
				return fmt.Errorf("failed to update buy history: %w", err)
			}
		}

		history.Date = date
		history.Qty = newQty
		history.TotalPrice = price
		history.Memo = req.Memo
		if err := s.historyRepo.Update(tx, history); err != nil {
			return fmt.Errorf("failed to update buy history: %w", err)
		}

		if err := storeAudit(tx, s.auditRepo, userID, model.AuditDomainBuy, model.AuditActionUpdate,
			model.AuditPayload{Before: &before, After: history}); err != nil {
			return fmt.Errorf("failed to update buy history: %w", err)
		}

		updated = history
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate(updated.CommodityID, "buy_updated")
	return updated, nil
}

func (s *buyHistoryService) Delete(id uuid.UUID, userID uuid.UUID) (bool, error) {
	var commodityID uuid.UUID
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		history, err := s.historyRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrBuyHistoryNotFound
			}
			return fmt.Errorf("failed to delete buy history: %w", err)
		}

		asset, err := s.stockRepo.FindByCommodityForUpdate(tx, history.CommodityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrStockAssetNotFound
			}
			return fmt.Errorf("failed to delete buy history: %w", err)
		}

		// Removing a buy retroactively reduces what is available.
		result := asset.Qty.Sub(history.Qty)
		if result.IsNegative() {
			return apperror.ErrInsufficientStock
		}
		if _, err := s.stockRepo.SetQuantity(tx, asset.ID, result); err != nil {
			return fmt.Errorf("failed to delete buy history: %w", err)
		}

		if err := storeAudit(tx, s.auditRepo, userID, model.AuditDomainBuy, model.AuditActionDelete,
			model.AuditPayload{After: history}); err != nil {
			return fmt.Errorf("failed to delete buy history: %w", err)
		}

		if err := s.historyRepo.SoftDelete(tx, id); err != nil {
			return fmt.Errorf("failed to delete buy history: %w", err)
		}

		commodityID = history.CommodityID
		return nil
	})
	if err != nil {
		return false, err
	}

	s.broadcastStockUpdate(commodityID, "buy_deleted")
	return true, nil
}

func (s *buyHistoryService) FindAll() ([]model.HistoryView, error) {
	histories, err := s.historyRepo.FindAll()
	if err != nil {
		return nil, err
	}
	views := make([]model.HistoryView, 0, len(histories))
	for i := range histories {
		views = append(views, buyHistoryView(&histories[i]))
	}
	return views, nil
}

func (s *buyHistoryService) FindOne(id uuid.UUID) (*model.HistoryView, error) {
	history, err := s.historyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrBuyHistoryNotFound
		}
		return nil, err
	}
	view := buyHistoryView(history)
	return &view, nil
}

func (s *buyHistoryService) FindByCommodity(commodityID uuid.UUID) (*model.CommodityHistoryView, error) {
	commodity, err := s.commodityRepo.FindByID(commodityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCommodityNotFound
		}
		return nil, err
	}

	histories, err := s.historyRepo.FindByCommodity(commodityID)
	if err != nil {
		return nil, err
	}

	view := &model.CommodityHistoryView{
		CommodityID:   commodity.ID,
		CommodityName: commodity.Name,
		Histories:     []model.HistoryView{},
	}
	totalQty := money.Zero()
	totalPrice := money.Zero()
	for i := range histories {
		totalQty = totalQty.Add(histories[i].Qty)
		totalPrice = totalPrice.Add(histories[i].TotalPrice)
		view.Histories = append(view.Histories, buyHistoryView(&histories[i]))
	}
	view.TotalQty = fmt.Sprintf("%s %s", totalQty, commodity.Unit)
	view.TotalPrice = totalPrice
	return view, nil
}

func buyHistoryView(h *model.BuyHistory) model.HistoryView {
	view := model.HistoryView{
		ID:          h.ID,
		CommodityID: h.CommodityID,
		Date:        h.Date.Format(model.DateLayout),
		Qty:         h.Qty,
		TotalPrice:  h.TotalPrice,
		Memo:        h.Memo,
	}
	if h.Commodity != nil {
		view.CommodityName = h.Commodity.Name
		view.CommodityUnit = h.Commodity.Unit
	}
	return view
}

func (s *buyHistoryService) broadcastStockUpdate(commodityID uuid.UUID, action string) {
	if s.wsHub == nil {
		return
	}
	asset, err := s.stockRepo.FindByCommodity(commodityID)
	if err != nil {
		return
	}
	go s.wsHub.BroadcastStockUpdate(action, asset)
}
