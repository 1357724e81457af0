package service

import (
	"fmt"
	"time"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
)

// window is a resolved inclusive [from, to] date range. Times are
// date-only (midnight UTC of the calendar day).
type window struct {
	from time.Time
	to   time.Time
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// resolveWindow maps a dashboard filter to its date range. filter=all
// returns nil (unbounded).
func resolveWindow(filter model.DashboardFilter, from, to string, now time.Time) (*window, error) {
	today := dateOnly(now)

	switch filter {
	case model.FilterDateRange:
		f, err := time.Parse(model.DateLayout, from)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrValidation, err)
		}
		t, err := time.Parse(model.DateLayout, to)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrValidation, err)
		}
		return &window{from: f, to: t}, nil

	case model.FilterDay:
		return &window{from: today, to: today}, nil

	case model.FilterMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return &window{from: first, to: last}, nil

	case model.FilterYear:
		first := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(today.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
		return &window{from: first, to: last}, nil

	case model.FilterAll:
		return nil, nil
	}

	return &window{from: today, to: today}, nil
}

// previousWindow is the symmetric range of identical length immediately
// preceding cur: the prior day/month/year for calendar filters, a
// day-count shift for explicit ranges. filter=all has no previous.
func previousWindow(filter model.DashboardFilter, cur *window, now time.Time) *window {
	today := dateOnly(now)

	switch filter {
	case model.FilterDateRange:
		if cur == nil {
			return nil
		}
		days := int(cur.to.Sub(cur.from).Hours()/24) + 1
		prevTo := cur.from.AddDate(0, 0, -1)
		prevFrom := prevTo.AddDate(0, 0, -(days - 1))
		return &window{from: prevFrom, to: prevTo}

	case model.FilterDay:
		y := today.AddDate(0, 0, -1)
		return &window{from: y, to: y}

	case model.FilterMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		last := first.AddDate(0, 1, -1)
		return &window{from: first, to: last}

	case model.FilterYear:
		first := time.Date(today.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(today.Year()-1, 12, 31, 0, 0, 0, 0, time.UTC)
		return &window{from: first, to: last}
	}

	return nil
}

// weekStart returns the Monday of t's week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return dateOnly(t).AddDate(0, 0, -offset)
}

// buildBuckets generates every bucket key spanning [from, to], buckets
// with zero activity included, so series have no gaps.
func buildBuckets(from, to time.Time, granularity model.DashboardGranularity) []string {
	var out []string

	switch granularity {
	case model.GranularityWeek:
		cur := weekStart(from)
		end := weekStart(to)
		for !cur.After(end) {
			out = append(out, cur.Format(model.DateLayout))
			cur = cur.AddDate(0, 0, 7)
		}

	case model.GranularityMonth:
		cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
		for !cur.After(end) {
			out = append(out, cur.Format(model.DateLayout))
			cur = cur.AddDate(0, 1, 0)
		}

	default:
		cur := dateOnly(from)
		end := dateOnly(to)
		for !cur.After(end) {
			out = append(out, cur.Format(model.DateLayout))
			cur = cur.AddDate(0, 0, 1)
		}
	}

	return out
}
