package service

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
	"go-commodity-ledger/pkg/money"
)

// memState is the shared backing store for the in-memory fakes. One
// instance per test; the fake repos all point at it so cross-repo
// effects (stock vs history vs audit) stay observable.
type memState struct {
	commodities map[uuid.UUID]*model.Commodity
	assets      map[uuid.UUID]*model.StockAsset
	buys        map[uuid.UUID]*model.BuyHistory
	sells       map[uuid.UUID]*model.SellHistory
	audits      []*model.AuditLog
}

func newMemState() *memState {
	return &memState{
		commodities: make(map[uuid.UUID]*model.Commodity),
		assets:      make(map[uuid.UUID]*model.StockAsset),
		buys:        make(map[uuid.UUID]*model.BuyHistory),
		sells:       make(map[uuid.UUID]*model.SellHistory),
	}
}

func (s *memState) clone() *memState {
	out := newMemState()
	for id, c := range s.commodities {
		cc := *c
		out.commodities[id] = &cc
	}
	for id, a := range s.assets {
		aa := *a
		out.assets[id] = &aa
	}
	for id, h := range s.buys {
		hh := *h
		out.buys[id] = &hh
	}
	for id, h := range s.sells {
		hh := *h
		out.sells[id] = &hh
	}
	out.audits = append(out.audits, s.audits...)
	return out
}

func (s *memState) addCommodity(name, unit string) *model.Commodity {
	c := &model.Commodity{Name: name, Unit: unit, IsActive: true}
	c.ID = uuid.New()
	s.commodities[c.ID] = c
	return c
}

func (s *memState) stockFor(commodityID uuid.UUID) *model.StockAsset {
	for _, a := range s.assets {
		if a.CommodityID == commodityID {
			return a
		}
	}
	return nil
}

// fakeTx mimics the commit-or-rollback contract: it snapshots the
// state before running the closure and restores it on error. The
// closure receives a distinct handle so tests can verify repo calls
// inside a mutation go through the ambient transaction.
type fakeTx struct {
	st     *memState
	handle *gorm.DB
}

func (f *fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	snap := f.st.clone()
	if err := fc(f.handle); err != nil {
		*f.st = *snap
		return err
	}
	return nil
}

// --- commodity repo ---

type fakeCommodityRepo struct {
	st *memState
}

func (r *fakeCommodityRepo) Create(commodity *model.Commodity) error {
	if commodity.ID == uuid.Nil {
		commodity.ID = uuid.New()
	}
	cc := *commodity
	r.st.commodities[commodity.ID] = &cc
	return nil
}

func (r *fakeCommodityRepo) FindAll() ([]model.Commodity, error) {
	out := make([]model.Commodity, 0, len(r.st.commodities))
	for _, c := range r.st.commodities {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCommodityRepo) FindByID(id uuid.UUID) (*model.Commodity, error) {
	c, ok := r.st.commodities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCommodityRepo) FindByName(name string) (*model.Commodity, error) {
	for _, c := range r.st.commodities {
		if c.Name == name {
			cc := *c
			return &cc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCommodityRepo) Update(commodity *model.Commodity) error {
	cc := *commodity
	r.st.commodities[commodity.ID] = &cc
	return nil
}

func (r *fakeCommodityRepo) Delete(id uuid.UUID) error {
	delete(r.st.commodities, id)
	return nil
}

func (r *fakeCommodityRepo) CountBuyHistories(id uuid.UUID) (int64, error) {
	var n int64
	for _, h := range r.st.buys {
		if h.CommodityID == id {
			n++
		}
	}
	return n, nil
}

// --- stock asset repo ---

type fakeStockRepo struct {
	st *memState
}

func (r *fakeStockRepo) FindByCommodity(commodityID uuid.UUID) (*model.StockAsset, error) {
	a := r.st.stockFor(commodityID)
	if a == nil {
		return nil, gorm.ErrRecordNotFound
	}
	aa := *a
	if c, ok := r.st.commodities[commodityID]; ok {
		cc := *c
		aa.Commodity = &cc
	}
	return &aa, nil
}

func (r *fakeStockRepo) FindByCommodityForUpdate(_ *gorm.DB, commodityID uuid.UUID) (*model.StockAsset, error) {
	a := r.st.stockFor(commodityID)
	if a == nil {
		return nil, gorm.ErrRecordNotFound
	}
	aa := *a
	return &aa, nil
}

func (r *fakeStockRepo) FindAll() ([]model.StockAsset, error) {
	out := make([]model.StockAsset, 0, len(r.st.assets))
	for _, a := range r.st.assets {
		aa := *a
		if c, ok := r.st.commodities[a.CommodityID]; ok {
			cc := *c
			aa.Commodity = &cc
		}
		out = append(out, aa)
	}
	return out, nil
}

func (r *fakeStockRepo) CreateOrUpdate(_ *gorm.DB, commodityID uuid.UUID, delta money.Amount) error {
	if a := r.st.stockFor(commodityID); a != nil {
		a.Qty = a.Qty.Add(delta)
		return nil
	}
	a := &model.StockAsset{CommodityID: commodityID, Qty: delta}
	a.ID = uuid.New()
	r.st.assets[a.ID] = a
	return nil
}

func (r *fakeStockRepo) SetQuantity(_ *gorm.DB, id uuid.UUID, qty money.Amount) (*model.StockAsset, error) {
	a, ok := r.st.assets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a.Qty = qty
	aa := *a
	return &aa, nil
}

// --- history aggregation shared by the fake buy/sell repos ---

type histRow struct {
	date  time.Time
	qty   money.Amount
	total money.Amount
}

func inWindow(d time.Time, from, to *time.Time) bool {
	if from == nil || to == nil {
		return true
	}
	return !d.Before(*from) && !d.After(*to)
}

func sumRows(rows []histRow, from, to *time.Time) (money.Amount, int64) {
	total := money.Zero()
	var count int64
	for _, row := range rows {
		if !inWindow(row.date, from, to) {
			continue
		}
		total = total.Add(row.total)
		count++
	}
	return total, count
}

func bucketRows(rows []histRow, from, to *time.Time, granularity model.DashboardGranularity, metric model.DashboardMetric) map[string]money.Amount {
	out := make(map[string]money.Amount)
	for _, row := range rows {
		if !inWindow(row.date, from, to) {
			continue
		}
		var key string
		switch granularity {
		case model.GranularityWeek:
			key = weekStart(row.date).Format(model.DateLayout)
		case model.GranularityMonth:
			key = time.Date(row.date.Year(), row.date.Month(), 1, 0, 0, 0, 0, time.UTC).Format(model.DateLayout)
		default:
			key = dateOnly(row.date).Format(model.DateLayout)
		}
		v := row.total
		if metric == model.MetricQty {
			v = row.qty
		}
		out[key] = out[key].Add(v)
	}
	return out
}

func minMaxRows(rows []histRow) (*time.Time, *time.Time) {
	var min, max *time.Time
	for _, row := range rows {
		d := dateOnly(row.date)
		if min == nil || d.Before(*min) {
			dd := d
			min = &dd
		}
		if max == nil || d.After(*max) {
			dd := d
			max = &dd
		}
	}
	return min, max
}

// --- buy history repo ---

type fakeBuyRepo struct {
	st        *memState
	createErr error
	lockedTx  *gorm.DB // handle seen by the last FindByIDForUpdate
}

func (r *fakeBuyRepo) rows() []histRow {
	out := make([]histRow, 0, len(r.st.buys))
	for _, h := range r.st.buys {
		out = append(out, histRow{date: h.Date, qty: h.Qty, total: h.TotalPrice})
	}
	return out
}

func (r *fakeBuyRepo) Create(_ *gorm.DB, history *model.BuyHistory) error {
	if r.createErr != nil {
		return r.createErr
	}
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	hh := *history
	r.st.buys[history.ID] = &hh
	return nil
}

func (r *fakeBuyRepo) FindByID(id uuid.UUID) (*model.BuyHistory, error) {
	h, ok := r.st.buys[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	hh := *h
	if c, ok := r.st.commodities[h.CommodityID]; ok {
		cc := *c
		hh.Commodity = &cc
	}
	return &hh, nil
}

func (r *fakeBuyRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.BuyHistory, error) {
	r.lockedTx = tx
	h, ok := r.st.buys[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	hh := *h
	return &hh, nil
}

func (r *fakeBuyRepo) FindAll() ([]model.BuyHistory, error) {
	out := make([]model.BuyHistory, 0, len(r.st.buys))
	for _, h := range r.st.buys {
		out = append(out, *h)
	}
	return out, nil
}

func (r *fakeBuyRepo) FindByCommodity(commodityID uuid.UUID) ([]model.BuyHistory, error) {
	var out []model.BuyHistory
	for _, h := range r.st.buys {
		if h.CommodityID == commodityID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *fakeBuyRepo) Update(_ *gorm.DB, history *model.BuyHistory) error {
	hh := *history
	hh.Commodity = nil
	r.st.buys[history.ID] = &hh
	return nil
}

func (r *fakeBuyRepo) SoftDelete(_ *gorm.DB, id uuid.UUID) error {
	delete(r.st.buys, id)
	return nil
}

func (r *fakeBuyRepo) SumTotalPrice(from, to *time.Time) (money.Amount, int64, error) {
	total, count := sumRows(r.rows(), from, to)
	return total, count, nil
}

func (r *fakeBuyRepo) BucketedSeries(from, to *time.Time, granularity model.DashboardGranularity, metric model.DashboardMetric) (map[string]money.Amount, error) {
	return bucketRows(r.rows(), from, to, granularity, metric), nil
}

func (r *fakeBuyRepo) MinMaxDate() (*time.Time, *time.Time, error) {
	min, max := minMaxRows(r.rows())
	return min, max, nil
}

// --- sell history repo ---

type fakeSellRepo struct {
	st       *memState
	lockedTx *gorm.DB
}

func (r *fakeSellRepo) rows() []histRow {
	out := make([]histRow, 0, len(r.st.sells))
	for _, h := range r.st.sells {
		out = append(out, histRow{date: h.Date, qty: h.Qty, total: h.TotalPrice})
	}
	return out
}

func (r *fakeSellRepo) Create(_ *gorm.DB, history *model.SellHistory) error {
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	hh := *history
	r.st.sells[history.ID] = &hh
	return nil
}

func (r *fakeSellRepo) FindByID(id uuid.UUID) (*model.SellHistory, error) {
	h, ok := r.st.sells[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	hh := *h
	if c, ok := r.st.commodities[h.CommodityID]; ok {
		cc := *c
		hh.Commodity = &cc
	}
	return &hh, nil
}

func (r *fakeSellRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.SellHistory, error) {
	r.lockedTx = tx
	h, ok := r.st.sells[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	hh := *h
	return &hh, nil
}

func (r *fakeSellRepo) FindAll() ([]model.SellHistory, error) {
	out := make([]model.SellHistory, 0, len(r.st.sells))
	for _, h := range r.st.sells {
		out = append(out, *h)
	}
	return out, nil
}

func (r *fakeSellRepo) FindByCommodity(commodityID uuid.UUID) ([]model.SellHistory, error) {
	var out []model.SellHistory
	for _, h := range r.st.sells {
		if h.CommodityID == commodityID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *fakeSellRepo) Update(_ *gorm.DB, history *model.SellHistory) error {
	hh := *history
	hh.Commodity = nil
	r.st.sells[history.ID] = &hh
	return nil
}

func (r *fakeSellRepo) SoftDelete(_ *gorm.DB, id uuid.UUID) error {
	delete(r.st.sells, id)
	return nil
}

func (r *fakeSellRepo) SumTotalPrice(from, to *time.Time) (money.Amount, int64, error) {
	total, count := sumRows(r.rows(), from, to)
	return total, count, nil
}

func (r *fakeSellRepo) BucketedSeries(from, to *time.Time, granularity model.DashboardGranularity, metric model.DashboardMetric) (map[string]money.Amount, error) {
	return bucketRows(r.rows(), from, to, granularity, metric), nil
}

func (r *fakeSellRepo) MinMaxDate() (*time.Time, *time.Time, error) {
	min, max := minMaxRows(r.rows())
	return min, max, nil
}

// --- audit log repo ---

type fakeAuditRepo struct {
	st       *memState
	storeErr error
}

func (r *fakeAuditRepo) Store(_ *gorm.DB, entry *model.AuditLog) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	ee := *entry
	r.st.audits = append(r.st.audits, &ee)
	return nil
}

func (r *fakeAuditRepo) FindAll() ([]model.AuditLog, error) {
	out := make([]model.AuditLog, 0, len(r.st.audits))
	for _, e := range r.st.audits {
		out = append(out, *e)
	}
	return out, nil
}

// --- dashboard repo ---

type fakeDashboardRepo struct {
	top    []model.TopCommodityRow
	recent []repository.RecentTransactionRow
}

func (r *fakeDashboardRepo) TopCommodities(from, to *time.Time, metric model.DashboardMetric, limit int) ([]model.TopCommodityRow, error) {
	if len(r.top) > limit {
		return r.top[:limit], nil
	}
	return r.top, nil
}

func (r *fakeDashboardRepo) RecentTransactions(limit int) ([]repository.RecentTransactionRow, error) {
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

var _ TxManager = (*fakeTx)(nil)
var _ repository.CommodityRepository = (*fakeCommodityRepo)(nil)
var _ repository.StockAssetRepository = (*fakeStockRepo)(nil)
var _ repository.BuyHistoryRepository = (*fakeBuyRepo)(nil)
var _ repository.SellHistoryRepository = (*fakeSellRepo)(nil)
var _ repository.AuditLogRepository = (*fakeAuditRepo)(nil)
var _ repository.DashboardRepository = (*fakeDashboardRepo)(nil)
