package service

import (
	"errors"
	"fmt"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
	"go-commodity-ledger/internal/ws"
	"go-commodity-ledger/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SellHistoryService is the sell side of the ledger. Selling consumes
// stock, so every path here carries the insufficient-stock guard the
// buy side only needs for corrections.
type SellHistoryService interface {
	Store(req *model.HistoryRequest, userID uuid.UUID) (*model.SellHistory, error)
	Update(id uuid.UUID, req *model.HistoryRequest, userID uuid.UUID) (*model.SellHistory, error)
	Delete(id uuid.UUID, userID uuid.UUID) (bool, error)
	FindAll() ([]model.HistoryView, error)
	FindOne(id uuid.UUID) (*model.HistoryView, error)
	FindByCommodity(commodityID uuid.UUID) (*model.CommodityHistoryView, error)
}

type sellHistoryService struct {
	tx            TxManager
	commodityRepo repository.CommodityRepository
	historyRepo   repository.SellHistoryRepository
	stockRepo     repository.StockAssetRepository
	auditRepo     repository.AuditLogRepository
	wsHub         *ws.Hub
}

func NewSellHistoryService(
	tx TxManager,
	commodityRepo repository.CommodityRepository,
	historyRepo repository.SellHistoryRepository,
	stockRepo repository.StockAssetRepository,
	auditRepo repository.AuditLogRepository,
	hub *ws.Hub,
) SellHistoryService {
	return &sellHistoryService{
		tx:            tx,
		commodityRepo: commodityRepo,
		historyRepo:   historyRepo,
		stockRepo:     stockRepo,
		auditRepo:     auditRepo,
		wsHub:         hub,
	}
}

func (s *sellHistoryService) Store(req *model.HistoryRequest, userID uuid.UUID) (*model.SellHistory, error) {
	qty, price, date, err := parseHistoryRequest(req)
	if err != nil {
		return nil, err
	}

	var created *model.SellHistory
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		commodity, err := s.commodityRepo.FindByID(req.CommodityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrCommodityNotFound
			}
			return fmt.Errorf("failed to store sell history: %w", err)
		}

		asset, err := s.stockRepo.FindByCommodityForUpdate(tx, commodity.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrStockAssetNotFound
			}
			return fmt.Errorf("failed to store sell history: %w", err)
		}

		if asset.Qty.LessThan(qty) {
			return apperror.ErrInsufficientStock
		}
		if _, err := s.stockRepo.SetQuantity(tx, asset.ID, asset.Qty.Sub(qty)); err != nil {
			return fmt.Errorf("failed to store sell history: %w", err)
		}

		history := &model.SellHistory{
			CommodityID: commodity.ID,
			Date:        date,
			Qty:         qty,
			TotalPrice:  price,
			Memo:        req.Memo,
		}
		if err := s.historyRepo.Create(tx, history); err != nil {
			return fmt.Errorf("failed to store sell history: %w", err)
		}

		if err := storeAudit(tx, s.auditRepo, userID, model.AuditDomainSell, model.AuditActionCreate,
			model.AuditPayload{After: history}); err != nil {
			return fmt.Errorf("failed to store sell history: %w", err)
		}

		created = history
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate(created.CommodityID, "sell_created")
	return created, nil
}

func (s *sellHistoryService) Update(id uuid.UUID, req *model.HistoryRequest, userID uuid.UUID) (*model.SellHistory, error) {
	newQty, price, date, err := parseHistoryRequest(req)
	if err != nil {
		return nil, err
	}

	var updated *model.SellHistory
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		history, err := s.historyRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrSellHistoryNotFound
			}
			return fmt.Errorf("failed to update sell history: %w", err)
		}
		before := *history

		asset, err := s.stockRepo.FindByCommodityForUpdate(tx, history.CommodityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrStockAssetNotFound
			}
			return fmt.Errorf("failed to update sell history: %w", err)
		}

		// Inverted sign relative to the buy side: selling less than
		// before returns stock, selling more consumes it.
		delta := history.Qty.Sub(newQty)
		result := asset.Qty.Add(delta)
		if result.IsNegative() {
			return apperror.ErrInsufficientStock
		}
		if _, err := s.stockRepo.SetQuantity(tx, asset.ID, result); err != nil {
			return fmt.Errorf("failed to update sell history: %w", err)
		}

		history.Date = date
		history.Qty = newQty
		history.TotalPrice = price
		history.Memo = req.Memo
		if err := s.historyRepo.Update(tx, history); err != nil {
			return fmt.Errorf("failed to update sell history: %w", err)
		}

		if err := storeAudit(tx, s.auditRepo, userID, model.AuditDomainSell, model.AuditActionUpdate,
			model.AuditPayload{Before: &before, After: history}); err != nil {
			return fmt.Errorf("failed to update sell history: %w", err)
		}

		updated = history
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate(updated.CommodityID, "sell_updated")
	return updated, nil
}

func (s *sellHistoryService) Delete(id uuid.UUID, userID uuid.UUID) (bool, error) {
	var commodityID uuid.UUID
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		history, err := s.historyRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrSellHistoryNotFound
			}
			return fmt.Errorf("failed to delete sell history: %w", err)
		}

		asset, err := s.stockRepo.FindByCommodityForUpdate(tx, history.CommodityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrStockAssetNotFound
			}
			return fmt.Errorf("failed to delete sell history: %w", err)
		}

		// Deleting a sell returns the sold quantity; no lower bound to
		// guard here.
		if _, err := s.stockRepo.SetQuantity(tx, asset.ID, asset.Qty.Add(history.Qty)); err != nil {
			return fmt.Errorf("failed to delete sell history: %w", err)
		}

		if err := storeAudit(tx, s.auditRepo, userID, model.AuditDomainSell, model.AuditActionDelete,
			model.AuditPayload{After: history}); err != nil {
			return fmt.Errorf("failed to delete sell history: %w", err)
		}

		if err := s.historyRepo.SoftDelete(tx, id); err != nil {
			return fmt.Errorf("failed to delete sell history: %w", err)
		}

		commodityID = history.CommodityID
		return nil
	})
	if err != nil {
		return false, err
	}

	s.broadcastStockUpdate(commodityID, "sell_deleted")
	return true, nil
}

func (s *sellHistoryService) FindAll() ([]model.HistoryView, error) {
	histories, err := s.historyRepo.FindAll()
	if err != nil {
		return nil, err
	}
	views := make([]model.HistoryView, 0, len(histories))
	for i := range histories {
		views = append(views, sellHistoryView(&histories[i]))
	}
	return views, nil
}

func (s *sellHistoryService) FindOne(id uuid.UUID) (*model.HistoryView, error) {
	history, err := s.historyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrSellHistoryNotFound
		}
		return nil, err
	}
	view := sellHistoryView(history)
	return &view, nil
}

func (s *sellHistoryService) FindByCommodity(commodityID uuid.UUID) (*model.CommodityHistoryView, error) {
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
		view.Histories = append(view.Histories, sellHistoryView(&histories[i]))
	}
	view.TotalQty = fmt.Sprintf("%s %s", totalQty, commodity.Unit)
	view.TotalPrice = totalPrice
	return view, nil
}

func sellHistoryView(h *model.SellHistory) model.HistoryView {
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

func (s *sellHistoryService) broadcastStockUpdate(commodityID uuid.UUID, action string) {
	if s.wsHub == nil {
		return
	}
	asset, err := s.stockRepo.FindByCommodity(commodityID)
	if err != nil {
		return
	}
	go s.wsHub.BroadcastStockUpdate(action, asset)
}
