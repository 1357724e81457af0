package model

import (
	"github.com/google/uuid"

	"go-commodity-ledger/pkg/money"
)

// DateLayout is the wire format for transaction dates and window
// boundaries.
const DateLayout = "2006-01-02"

// DashboardFilter selects the reporting window.
type DashboardFilter string

const (
	FilterDay       DashboardFilter = "day"
	FilterMonth     DashboardFilter = "month"
	FilterYear      DashboardFilter = "year"
	FilterAll       DashboardFilter = "all"
	FilterDateRange DashboardFilter = "date_range"
)

func (f DashboardFilter) Valid() bool {
	switch f {
	case FilterDay, FilterMonth, FilterYear, FilterAll, FilterDateRange:
		return true
	}
	return false
}

// DashboardGranularity is the bucket width for series reporting.
type DashboardGranularity string

const (
	GranularityDay   DashboardGranularity = "day"
	GranularityWeek  DashboardGranularity = "week"
	GranularityMonth DashboardGranularity = "month"
)

func (g DashboardGranularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// DashboardMetric selects what gets summed per bucket or ranking.
type DashboardMetric string

const (
	MetricQty   DashboardMetric = "qty"
	MetricValue DashboardMetric = "value"
)

func (m DashboardMetric) Valid() bool {
	return m == MetricQty || m == MetricValue
}

// DashboardParams carries filter plus the explicit range for
// filter=date_range.
type DashboardParams struct {
	Filter DashboardFilter
	From   string // 2006-01-02, date_range only
	To     string
}

type ProfitLossResponse struct {
	Value string `json:"value"`
	Trend string `json:"trend"`
}

type TransactionTotals struct {
	TotalTransactions int64  `json:"total_transactions"`
	TotalPrice        string `json:"total_price"`
}

type SeriesPoint struct {
	Bucket string `json:"bucket"`
	Buy    string `json:"buy"`
	Sell   string `json:"sell"`
}

type SeriesMeta struct {
	Filter      DashboardFilter      `json:"filter"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Granularity DashboardGranularity `json:"granularity"`
	Metric      DashboardMetric      `json:"metric"`
}

type SeriesResponse struct {
	Meta   SeriesMeta    `json:"meta"`
	Series []SeriesPoint `json:"series"`
	Totals struct {
		Buy  string `json:"buy"`
		Sell string `json:"sell"`
	} `json:"totals"`
}

// TopCommodityRow is one ranked commodity with per-side and combined
// sums inside the window.
type TopCommodityRow struct {
	CommodityID   uuid.UUID    `json:"commodity_id"`
	CommodityName string       `json:"commodity_name"`
	BuyQty        money.Amount `json:"buy_qty"`
	BuyValue      money.Amount `json:"buy_value"`
	SellQty       money.Amount `json:"sell_qty"`
	SellValue     money.Amount `json:"sell_value"`
	TotalQty      money.Amount `json:"total_qty"`
	TotalValue    money.Amount `json:"total_value"`
}

type TopCommoditiesMeta struct {
	Filter DashboardFilter `json:"filter"`
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Metric DashboardMetric `json:"metric"`
	Limit  int             `json:"limit"`
}

type TopCommoditiesResponse struct {
	Meta  TopCommoditiesMeta `json:"meta"`
	Items []TopCommodityRow  `json:"items"`
}

// RecentTransaction is one row of the latest buys/sells feed.
type RecentTransaction struct {
	Date      string `json:"date"`
	Commodity string `json:"commodity"`
	Type      string `json:"type"` // BUY or SELL
	Qty       string `json:"qty"`
	Total     string `json:"total"`
	CreatedAt string `json:"created_at"`
}
