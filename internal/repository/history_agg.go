package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/pkg/money"

	"gorm.io/gorm"
)

// HistoryAggregates is the read-side contract shared by both history
// tables. Windows are inclusive; nil from/to means unbounded.
type HistoryAggregates interface {
	SumTotalPrice(from, to *time.Time) (money.Amount, int64, error)
	BucketedSeries(from, to *time.Time, granularity model.DashboardGranularity, metric model.DashboardMetric) (map[string]money.Amount, error)
	MinMaxDate() (*time.Time, *time.Time, error)
}

// historyAgg implements the aggregate queries once; buy and sell repos
// embed it with their own table name. Soft-deleted rows never count.
type historyAgg struct {
	db    *gorm.DB
	table string
}

func (a historyAgg) SumTotalPrice(from, to *time.Time) (money.Amount, int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(total_price), 0)::text, COUNT(*)
		FROM %s
		WHERE deleted_at IS NULL`, a.table)

	var args []interface{}
	if from != nil && to != nil {
		query += ` AND date >= ?::date AND date <= ?::date`
		args = append(args, from.Format(model.DateLayout), to.Format(model.DateLayout))
	}

	var total string
	var count int64
	row := a.db.Raw(query, args...).Row()
	if err := row.Scan(&total, &count); err != nil {
		return money.Zero(), 0, err
	}

	amount, err := money.Parse(total)
	if err != nil {
		return money.Zero(), 0, err
	}
	return amount, count, nil
}

func (a historyAgg) BucketedSeries(from, to *time.Time, granularity model.DashboardGranularity, metric model.DashboardMetric) (map[string]money.Amount, error) {
	// date_trunc('week', ...) is Monday-anchored in Postgres, which is
	// what the series contract requires.
	var bucketExpr string
	switch granularity {
	case model.GranularityWeek:
		bucketExpr = `date_trunc('week', date::timestamp)::date`
	case model.GranularityMonth:
		bucketExpr = `date_trunc('month', date::timestamp)::date`
	default:
		bucketExpr = `date::date`
	}

	valueExpr := "total_price"
	if metric == model.MetricQty {
		valueExpr = "qty"
	}

	query := fmt.Sprintf(`
		SELECT (%s)::text AS bucket, COALESCE(SUM(%s), 0)::text AS value
		FROM %s
		WHERE deleted_at IS NULL`, bucketExpr, valueExpr, a.table)

	var args []interface{}
	if from != nil && to != nil {
		query += ` AND date >= ?::date AND date <= ?::date`
		args = append(args, from.Format(model.DateLayout), to.Format(model.DateLayout))
	}
	query += `
		GROUP BY 1
		ORDER BY 1 ASC`

	rows, err := a.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]money.Amount)
	for rows.Next() {
		var bucket, value string
		if err := rows.Scan(&bucket, &value); err != nil {
			return nil, err
		}
		amount, err := money.Parse(value)
		if err != nil {
			return nil, err
		}
		out[bucket] = amount
	}
	return out, rows.Err()
}

func (a historyAgg) MinMaxDate() (*time.Time, *time.Time, error) {
	query := fmt.Sprintf(`
		SELECT MIN(date)::text, MAX(date)::text
		FROM %s
		WHERE deleted_at IS NULL`, a.table)

	var minStr, maxStr sql.NullString
	row := a.db.Raw(query).Row()
	if err := row.Scan(&minStr, &maxStr); err != nil {
		return nil, nil, err
	}

	parse := func(s sql.NullString) (*time.Time, error) {
		if !s.Valid || s.String == "" {
			return nil, nil
		}
		t, err := time.Parse(model.DateLayout, s.String)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	minDate, err := parse(minStr)
	if err != nil {
		return nil, nil, err
	}
	maxDate, err := parse(maxStr)
	if err != nil {
		return nil, nil, err
	}
	return minDate, maxDate, nil
}
