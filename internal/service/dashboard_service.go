package service

import (
	"errors"
	"time"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
	"go-commodity-ledger/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultTopCommodities     = 5
	defaultRecentTransactions = 10

	recentDateLayout = "02 Jan 06"
)

// DashboardService derives time-windowed financial metrics from the
// buy/sell history. Read-only: it never mutates the ledger.
type DashboardService interface {
	TotalProfitLoss(params model.DashboardParams) (*model.ProfitLossResponse, error)
	TotalStockAssets(commodityID *uuid.UUID) ([]model.StockAssetView, error)
	TotalBuyTransactions(params model.DashboardParams) (*model.TransactionTotals, error)
	TotalSellTransactions(params model.DashboardParams) (*model.TransactionTotals, error)
	BuySellSeries(params model.DashboardParams, granularity model.DashboardGranularity, metric model.DashboardMetric) (*model.SeriesResponse, error)
	TopCommodities(params model.DashboardParams, metric model.DashboardMetric, limit int) (*model.TopCommoditiesResponse, error)
	RecentTransactions() ([]model.RecentTransaction, error)
}

type dashboardService struct {
	buyAgg    repository.HistoryAggregates
	sellAgg   repository.HistoryAggregates
	stockRepo repository.StockAssetRepository
	dashRepo  repository.DashboardRepository
	now       func() time.Time
}

func NewDashboardService(
	buyAgg repository.HistoryAggregates,
	sellAgg repository.HistoryAggregates,
	stockRepo repository.StockAssetRepository,
	dashRepo repository.DashboardRepository,
) DashboardService {
	return &dashboardService{
		buyAgg:    buyAgg,
		sellAgg:   sellAgg,
		stockRepo: stockRepo,
		dashRepo:  dashRepo,
		now:       time.Now,
	}
}

func (w *window) bounds() (*time.Time, *time.Time) {
	if w == nil {
		return nil, nil
	}
	return &w.from, &w.to
}

func (s *dashboardService) TotalProfitLoss(params model.DashboardParams) (*model.ProfitLossResponse, error) {
	cur, err := resolveWindow(params.Filter, params.From, params.To, s.now())
	if err != nil {
		return nil, err
	}
	prev := previousWindow(params.Filter, cur, s.now())

	from, to := cur.bounds()
	curSell, _, err := s.sellAgg.SumTotalPrice(from, to)
	if err != nil {
		return nil, err
	}
	curBuy, _, err := s.buyAgg.SumTotalPrice(from, to)
	if err != nil {
		return nil, err
	}
	current := curSell.Sub(curBuy)

	previous := money.Zero()
	if prev != nil {
		pFrom, pTo := prev.bounds()
		prevSell, _, err := s.sellAgg.SumTotalPrice(pFrom, pTo)
		if err != nil {
			return nil, err
		}
		prevBuy, _, err := s.buyAgg.SumTotalPrice(pFrom, pTo)
		if err != nil {
			return nil, err
		}
		previous = prevSell.Sub(prevBuy)
	}

	trend := money.Zero()
	if !previous.IsZero() {
		// Multiply before dividing so the only rounding is the 1dp
		// render below.
		trend = current.Sub(previous).MulInt(100).Div(previous.Abs())
	}

	return &model.ProfitLossResponse{
		Value: current.String(),
		Trend: trend.StringFixed(1),
	}, nil
}

func (s *dashboardService) TotalStockAssets(commodityID *uuid.UUID) ([]model.StockAssetView, error) {
	var assets []model.StockAsset
	if commodityID != nil {
		asset, err := s.stockRepo.FindByCommodity(*commodityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.ErrStockAssetNotFound
			}
			return nil, err
		}
		assets = []model.StockAsset{*asset}
	} else {
		var err error
		assets, err = s.stockRepo.FindAll()
		if err != nil {
			return nil, err
		}
	}

	views := make([]model.StockAssetView, 0, len(assets))
	for _, asset := range assets {
		view := model.StockAssetView{
			CommodityID: asset.CommodityID,
			Qty:         asset.Qty,
		}
		if asset.Commodity != nil {
			view.CommodityName = asset.Commodity.Name
			view.CommodityUnit = asset.Commodity.Unit
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *dashboardService) TotalBuyTransactions(params model.DashboardParams) (*model.TransactionTotals, error) {
	return s.periodTotals(s.buyAgg, params)
}

func (s *dashboardService) TotalSellTransactions(params model.DashboardParams) (*model.TransactionTotals, error) {
	return s.periodTotals(s.sellAgg, params)
}

func (s *dashboardService) periodTotals(agg repository.HistoryAggregates, params model.DashboardParams) (*model.TransactionTotals, error) {
	win, err := resolveWindow(params.Filter, params.From, params.To, s.now())
	if err != nil {
		return nil, err
	}
	from, to := win.bounds()
	total, count, err := agg.SumTotalPrice(from, to)
	if err != nil {
		return nil, err
	}
	return &model.TransactionTotals{
		TotalTransactions: count,
		TotalPrice:        total.String(),
	}, nil
}

func (s *dashboardService) BuySellSeries(params model.DashboardParams, granularity model.DashboardGranularity, metric model.DashboardMetric) (*model.SeriesResponse, error) {
	win, err := resolveWindow(params.Filter, params.From, params.To, s.now())
	if err != nil {
		return nil, err
	}
	from, to := win.bounds()

	buySeries, err := s.buyAgg.BucketedSeries(from, to, granularity, metric)
	if err != nil {
		return nil, err
	}
	sellSeries, err := s.sellAgg.BucketedSeries(from, to, granularity, metric)
	if err != nil {
		return nil, err
	}

	effective := win
	if effective == nil {
		effective, err = s.allTimeWindow()
		if err != nil {
			return nil, err
		}
	}

	resp := &model.SeriesResponse{
		Meta: model.SeriesMeta{
			Filter:      params.Filter,
			From:        effective.from.Format(model.DateLayout),
			To:          effective.to.Format(model.DateLayout),
			Granularity: granularity,
			Metric:      metric,
		},
		Series: []model.SeriesPoint{},
	}

	totalBuy := money.Zero()
	totalSell := money.Zero()
	for _, bucket := range buildBuckets(effective.from, effective.to, granularity) {
		buy := buySeries[bucket]
		sell := sellSeries[bucket]
		totalBuy = totalBuy.Add(buy)
		totalSell = totalSell.Add(sell)
		resp.Series = append(resp.Series, model.SeriesPoint{
			Bucket: bucket,
			Buy:    buy.String(),
			Sell:   sell.String(),
		})
	}
	resp.Totals.Buy = totalBuy.String()
	resp.Totals.Sell = totalSell.String()
	return resp, nil
}

// allTimeWindow is the min/max transaction date over both history
// tables; today when there is no history at all.
func (s *dashboardService) allTimeWindow() (*window, error) {
	buyMin, buyMax, err := s.buyAgg.MinMaxDate()
	if err != nil {
		return nil, err
	}
	sellMin, sellMax, err := s.sellAgg.MinMaxDate()
	if err != nil {
		return nil, err
	}

	var min, max *time.Time
	for _, d := range []*time.Time{buyMin, buyMax, sellMin, sellMax} {
		if d == nil {
			continue
		}
		if min == nil || d.Before(*min) {
			min = d
		}
		if max == nil || d.After(*max) {
			max = d
		}
	}

	if min == nil || max == nil {
		today := dateOnly(s.now())
		return &window{from: today, to: today}, nil
	}
	return &window{from: dateOnly(*min), to: dateOnly(*max)}, nil
}

func (s *dashboardService) TopCommodities(params model.DashboardParams, metric model.DashboardMetric, limit int) (*model.TopCommoditiesResponse, error) {
	if limit <= 0 {
		limit = defaultTopCommodities
	}
	win, err := resolveWindow(params.Filter, params.From, params.To, s.now())
	if err != nil {
		return nil, err
	}
	from, to := win.bounds()

	rows, err := s.dashRepo.TopCommodities(from, to, metric, limit)
	if err != nil {
		return nil, err
	}

	resp := &model.TopCommoditiesResponse{
		Meta: model.TopCommoditiesMeta{
			Filter: params.Filter,
			Metric: metric,
			Limit:  limit,
		},
		Items: rows,
	}
	if win != nil {
		resp.Meta.From = win.from.Format(model.DateLayout)
		resp.Meta.To = win.to.Format(model.DateLayout)
	}
	return resp, nil
}

func (s *dashboardService) RecentTransactions() ([]model.RecentTransaction, error) {
	rows, err := s.dashRepo.RecentTransactions(defaultRecentTransactions)
	if err != nil {
		return nil, err
	}

	items := make([]model.RecentTransaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, model.RecentTransaction{
			Date:      row.Date.Format(recentDateLayout),
			Commodity: row.Commodity,
			Type:      row.Type,
			Qty:       row.Qty.String(),
			Total:     row.Total.String(),
			CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}
