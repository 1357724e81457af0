package repository

import (
	"time"

	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DashboardRepository covers the read-side queries spanning both
// history tables.
type DashboardRepository interface {
	TopCommodities(from, to *time.Time, metric model.DashboardMetric, limit int) ([]model.TopCommodityRow, error)
	RecentTransactions(limit int) ([]RecentTransactionRow, error)
}

// RecentTransactionRow is the raw scan target; the service formats it.
type RecentTransactionRow struct {
	Date      time.Time
	Commodity string
	Type      string
	Qty       money.Amount
	Total     money.Amount
	CreatedAt time.Time
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) TopCommodities(from, to *time.Time, metric model.DashboardMetric, limit int) ([]model.TopCommodityRow, error) {
	whereDate := ""
	args := []interface{}{}
	if from != nil && to != nil {
		whereDate = `AND t.date >= ?::date AND t.date <= ?::date`
		args = append(args, from.Format(model.DateLayout), to.Format(model.DateLayout))
	}

	orderBy := `"totalValue" DESC`
	if metric == model.MetricQty {
		orderBy = `"totalQty" DESC`
	}
	args = append(args, limit)

	query := `
	WITH tx AS (
		SELECT bh.commodity_id, bh.date::date AS date, bh.qty, bh.total_price AS value, 'buy' AS kind
		FROM buy_histories bh
		WHERE bh.deleted_at IS NULL

		UNION ALL

		SELECT sh.commodity_id, sh.date::date AS date, sh.qty, sh.total_price AS value, 'sell' AS kind
		FROM sell_histories sh
		WHERE sh.deleted_at IS NULL
	),
	agg AS (
		SELECT
			t.commodity_id,
			COALESCE(SUM(CASE WHEN t.kind = 'buy' THEN t.qty END), 0) AS "buyQty",
			COALESCE(SUM(CASE WHEN t.kind = 'buy' THEN t.value END), 0) AS "buyValue",
			COALESCE(SUM(CASE WHEN t.kind = 'sell' THEN t.qty END), 0) AS "sellQty",
			COALESCE(SUM(CASE WHEN t.kind = 'sell' THEN t.value END), 0) AS "sellValue",
			COALESCE(SUM(t.qty), 0) AS "totalQty",
			COALESCE(SUM(t.value), 0) AS "totalValue"
		FROM tx t
		WHERE 1=1 ` + whereDate + `
		GROUP BY t.commodity_id
	)
	SELECT
		a.commodity_id::text,
		c.name,
		a."buyQty"::text, a."buyValue"::text,
		a."sellQty"::text, a."sellValue"::text,
		a."totalQty"::text, a."totalValue"::text
	FROM agg a
	JOIN commodities c ON c.id = a.commodity_id
	ORDER BY ` + orderBy + `
	LIMIT ?`

	rows, err := r.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TopCommodityRow{}
	for rows.Next() {
		var idStr, name string
		var buyQty, buyValue, sellQty, sellValue, totalQty, totalValue string
		if err := rows.Scan(&idStr, &name, &buyQty, &buyValue, &sellQty, &sellValue, &totalQty, &totalValue); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		row := model.TopCommodityRow{CommodityID: id, CommodityName: name}
		for dst, src := range map[*money.Amount]string{
			&row.BuyQty: buyQty, &row.BuyValue: buyValue,
			&row.SellQty: sellQty, &row.SellValue: sellValue,
			&row.TotalQty: totalQty, &row.TotalValue: totalValue,
		} {
			amount, err := money.Parse(src)
			if err != nil {
				return nil, err
			}
			*dst = amount
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *dashboardRepo) RecentTransactions(limit int) ([]RecentTransactionRow, error) {
	query := `
	SELECT bh.date, c.name, 'BUY', bh.qty::text, bh.total_price::text, bh.created_at
	FROM buy_histories bh
	JOIN commodities c ON c.id = bh.commodity_id
	WHERE bh.deleted_at IS NULL

	UNION ALL

	SELECT sh.date, c.name, 'SELL', sh.qty::text, sh.total_price::text, sh.created_at
	FROM sell_histories sh
	JOIN commodities c ON c.id = sh.commodity_id
	WHERE sh.deleted_at IS NULL

	ORDER BY 6 DESC
	LIMIT ?`

	rows, err := r.db.Raw(query, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentTransactionRow{}
	for rows.Next() {
		var row RecentTransactionRow
		var qty, total string
		if err := rows.Scan(&row.Date, &row.Commodity, &row.Type, &qty, &total, &row.CreatedAt); err != nil {
			return nil, err
		}
		if row.Qty, err = money.Parse(qty); err != nil {
			return nil, err
		}
		if row.Total, err = money.Parse(total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
