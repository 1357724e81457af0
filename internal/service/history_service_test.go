package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-commodity-ledger/internal/apperror"
	"go-commodity-ledger/internal/model"
)

type ledgerFixture struct {
	st        *memState
	buyRepo   *fakeBuyRepo
	sellRepo  *fakeSellRepo
	auditRepo *fakeAuditRepo
	txHandle  *gorm.DB
	buySvc    BuyHistoryService
	sellSvc   SellHistoryService
	commodity *model.Commodity
	userID    uuid.UUID
}

func newLedgerFixture() *ledgerFixture {
	st := newMemState()
	f := &ledgerFixture{
		st:        st,
		buyRepo:   &fakeBuyRepo{st: st},
		sellRepo:  &fakeSellRepo{st: st},
		auditRepo: &fakeAuditRepo{st: st},
		txHandle:  &gorm.DB{},
		commodity: st.addCommodity("Copper", "kg"),
		userID:    uuid.New(),
	}
	tx := &fakeTx{st: st, handle: f.txHandle}
	commodityRepo := &fakeCommodityRepo{st: st}
	stockRepo := &fakeStockRepo{st: st}
	f.buySvc = NewBuyHistoryService(tx, commodityRepo, f.buyRepo, stockRepo, f.auditRepo, nil)
	f.sellSvc = NewSellHistoryService(tx, commodityRepo, f.sellRepo, stockRepo, f.auditRepo, nil)
	return f
}

func (f *ledgerFixture) req(qty, price string) *model.HistoryRequest {
	return &model.HistoryRequest{
		CommodityID: f.commodity.ID,
		Date:        "2025-03-15",
		Qty:         qty,
		TotalPrice:  price,
	}
}

func (f *ledgerFixture) stockQty(t *testing.T) string {
	t.Helper()
	asset := f.st.stockFor(f.commodity.ID)
	require.NotNil(t, asset, "stock asset should exist")
	return asset.Qty.String()
}

type auditPayload struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

func decodePayload(t *testing.T, entry *model.AuditLog) auditPayload {
	t.Helper()
	var p auditPayload
	require.NoError(t, json.Unmarshal(entry.Payload, &p))
	return p
}

func TestBuyStoreCreatesStock(t *testing.T) {
	f := newLedgerFixture()

	created, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", created.Qty.String())
	assert.Equal(t, "10.00", f.stockQty(t))

	require.Len(t, f.st.audits, 1)
	entry := f.st.audits[0]
	assert.Equal(t, model.AuditDomainBuy, entry.Type)
	assert.Equal(t, model.AuditActionCreate, entry.Action)
	assert.Equal(t, f.userID, entry.UserID)

	p := decodePayload(t, entry)
	assert.Nil(t, p.Before)
	assert.NotNil(t, p.After)
}

func TestBuyStoreAccumulates(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	_, err = f.buySvc.Store(f.req("5", "60"), f.userID)
	require.NoError(t, err)

	assert.Equal(t, "15.00", f.stockQty(t))
	assert.Len(t, f.st.buys, 2)
	assert.Len(t, f.st.audits, 2)
}

func TestBuyStoreUnknownCommodity(t *testing.T) {
	f := newLedgerFixture()
	req := f.req("10", "100")
	req.CommodityID = uuid.New()

	_, err := f.buySvc.Store(req, f.userID)
	assert.ErrorIs(t, err, apperror.ErrCommodityNotFound)
	assert.Empty(t, f.st.buys)
	assert.Empty(t, f.st.audits)
}

func TestSellWithoutStock(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.sellSvc.Store(f.req("4", "60"), f.userID)
	assert.ErrorIs(t, err, apperror.ErrStockAssetNotFound)
	assert.Empty(t, f.st.sells)
	assert.Empty(t, f.st.audits)
}

func TestSellStoreConsumesStock(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)

	_, err = f.sellSvc.Store(f.req("4", "60"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "6.00", f.stockQty(t))

	require.Len(t, f.st.audits, 2)
	assert.Equal(t, model.AuditDomainSell, f.st.audits[1].Type)
	assert.Equal(t, model.AuditActionCreate, f.st.audits[1].Action)

	// Selling exactly what remains is allowed.
	_, err = f.sellSvc.Store(f.req("6", "90"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", f.stockQty(t))
}

func TestSellInsufficientStock(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)

	_, err = f.sellSvc.Store(f.req("20", "300"), f.userID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	// Nothing from the failed sell leaks out.
	assert.Equal(t, "10.00", f.stockQty(t))
	assert.Empty(t, f.st.sells)
	assert.Len(t, f.st.audits, 1)
}

func TestSellUpdateAdjustsStock(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	sell, err := f.sellSvc.Store(f.req("4", "60"), f.userID)
	require.NoError(t, err)
	require.Equal(t, "6.00", f.stockQty(t))

	// Raising the sold quantity consumes the difference.
	_, err = f.sellSvc.Update(sell.ID, f.req("6", "90"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "4.00", f.stockQty(t))

	// Lowering it returns the difference.
	_, err = f.sellSvc.Update(sell.ID, f.req("2", "30"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "8.00", f.stockQty(t))

	// Raising past what is available fails and keeps state intact.
	_, err = f.sellSvc.Update(sell.ID, f.req("11", "170"), f.userID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, "8.00", f.stockQty(t))
	assert.Equal(t, "2.00", f.st.sells[sell.ID].Qty.String())
}

func TestSellUpdateAuditHasBeforeAndAfter(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	sell, err := f.sellSvc.Store(f.req("4", "60"), f.userID)
	require.NoError(t, err)

	_, err = f.sellSvc.Update(sell.ID, f.req("6", "90"), f.userID)
	require.NoError(t, err)

	require.Len(t, f.st.audits, 3)
	entry := f.st.audits[2]
	assert.Equal(t, model.AuditActionUpdate, entry.Action)

	p := decodePayload(t, entry)
	require.NotNil(t, p.Before)
	require.NotNil(t, p.After)

	var before, after model.SellHistory
	require.NoError(t, json.Unmarshal(p.Before, &before))
	require.NoError(t, json.Unmarshal(p.After, &after))
	assert.Equal(t, "4.00", before.Qty.String())
	assert.Equal(t, "6.00", after.Qty.String())
}

func TestSellDeleteReturnsStock(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	sell, err := f.sellSvc.Store(f.req("4", "60"), f.userID)
	require.NoError(t, err)
	require.Equal(t, "6.00", f.stockQty(t))

	ok, err := f.sellSvc.Delete(sell.ID, f.userID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10.00", f.stockQty(t))
	assert.Empty(t, f.st.sells)

	// Delete audit carries the row as it was before deletion.
	entry := f.st.audits[len(f.st.audits)-1]
	assert.Equal(t, model.AuditActionDelete, entry.Action)
	p := decodePayload(t, entry)
	assert.Nil(t, p.Before)
	var after model.SellHistory
	require.NoError(t, json.Unmarshal(p.After, &after))
	assert.Equal(t, "4.00", after.Qty.String())
}

func TestBuyUpdateAdjustsStock(t *testing.T) {
	f := newLedgerFixture()
	buy, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)

	_, err = f.buySvc.Update(buy.ID, f.req("7", "70"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "7.00", f.stockQty(t))

	// Price-only corrections never touch stock.
	updated, err := f.buySvc.Update(buy.ID, f.req("7", "84"), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "84.00", updated.TotalPrice.String())
	assert.Equal(t, "7.00", f.stockQty(t))
}

func TestBuyUpdateCannotStrandSoldStock(t *testing.T) {
	f := newLedgerFixture()
	buy, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	_, err = f.sellSvc.Store(f.req("8", "120"), f.userID)
	require.NoError(t, err)
	require.Equal(t, "2.00", f.stockQty(t))

	// Shrinking the buy below what was already sold would drive stock
	// negative.
	_, err = f.buySvc.Update(buy.ID, f.req("5", "50"), f.userID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, "2.00", f.stockQty(t))
	assert.Equal(t, "10.00", f.st.buys[buy.ID].Qty.String())
}

func TestBuyDeleteReducesStock(t *testing.T) {
	f := newLedgerFixture()
	first, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	_, err = f.buySvc.Store(f.req("5", "60"), f.userID)
	require.NoError(t, err)
	require.Equal(t, "15.00", f.stockQty(t))

	ok, err := f.buySvc.Delete(first.ID, f.userID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "5.00", f.stockQty(t))
	assert.Len(t, f.st.buys, 1)
}

func TestBuyDeleteCannotStrandSoldStock(t *testing.T) {
	f := newLedgerFixture()
	first, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	_, err = f.buySvc.Store(f.req("5", "60"), f.userID)
	require.NoError(t, err)
	_, err = f.sellSvc.Store(f.req("12", "200"), f.userID)
	require.NoError(t, err)
	require.Equal(t, "3.00", f.stockQty(t))

	_, err = f.buySvc.Delete(first.ID, f.userID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, "3.00", f.stockQty(t))
	assert.Len(t, f.st.buys, 2)
}

func TestCorrectionsReadHistoryThroughTransaction(t *testing.T) {
	f := newLedgerFixture()
	buy, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	sell, err := f.sellSvc.Store(f.req("4", "60"), f.userID)
	require.NoError(t, err)

	// Update and delete must load the history row via the ambient
	// transaction handle, not the repo's own connection; a read outside
	// the transaction can hand back a stale before-image.
	_, err = f.buySvc.Update(buy.ID, f.req("8", "80"), f.userID)
	require.NoError(t, err)
	assert.Same(t, f.txHandle, f.buyRepo.lockedTx)

	_, err = f.sellSvc.Update(sell.ID, f.req("3", "45"), f.userID)
	require.NoError(t, err)
	assert.Same(t, f.txHandle, f.sellRepo.lockedTx)

	f.sellRepo.lockedTx = nil
	_, err = f.sellSvc.Delete(sell.ID, f.userID)
	require.NoError(t, err)
	assert.Same(t, f.txHandle, f.sellRepo.lockedTx)

	f.buyRepo.lockedTx = nil
	_, err = f.buySvc.Delete(buy.ID, f.userID)
	require.NoError(t, err)
	assert.Same(t, f.txHandle, f.buyRepo.lockedTx)
}

func TestDeleteMissingHistory(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.buySvc.Delete(uuid.New(), f.userID)
	assert.ErrorIs(t, err, apperror.ErrBuyHistoryNotFound)
	_, err = f.sellSvc.Delete(uuid.New(), f.userID)
	assert.ErrorIs(t, err, apperror.ErrSellHistoryNotFound)
}

func TestAuditFailureRollsBackWholeMutation(t *testing.T) {
	f := newLedgerFixture()
	f.auditRepo.storeErr = errors.New("audit sink down")

	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.Error(t, err)

	// Atomicity: no stock, no history, no audit survived.
	assert.Nil(t, f.st.stockFor(f.commodity.ID))
	assert.Empty(t, f.st.buys)
	assert.Empty(t, f.st.audits)
}

func TestHistoryCreateFailureRollsBackStock(t *testing.T) {
	f := newLedgerFixture()
	f.buyRepo.createErr = errors.New("insert failed")

	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.Error(t, err)
	assert.Nil(t, f.st.stockFor(f.commodity.ID))
}

func TestHistoryRequestValidation(t *testing.T) {
	f := newLedgerFixture()

	cases := []struct {
		name string
		req  *model.HistoryRequest
	}{
		{"three decimal places", f.req("10.123", "100")},
		{"zero qty", f.req("0", "100")},
		{"negative qty", f.req("-1", "100")},
		{"zero price", f.req("10", "0")},
		{"bad date", &model.HistoryRequest{CommodityID: f.commodity.ID, Date: "15-03-2025", Qty: "10", TotalPrice: "100"}},
		{"nil commodity id", &model.HistoryRequest{Date: "2025-03-15", Qty: "10", TotalPrice: "100"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.buySvc.Store(tc.req, f.userID)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
	assert.Empty(t, f.st.buys)
}

func TestFindByCommodityTotals(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.buySvc.Store(f.req("10", "100"), f.userID)
	require.NoError(t, err)
	_, err = f.buySvc.Store(f.req("5.50", "60"), f.userID)
	require.NoError(t, err)

	view, err := f.buySvc.FindByCommodity(f.commodity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copper", view.CommodityName)
	assert.Equal(t, "15.50 kg", view.TotalQty)
	assert.Equal(t, "160.00", view.TotalPrice.String())
	assert.Len(t, view.Histories, 2)

	_, err = f.buySvc.FindByCommodity(uuid.New())
	assert.ErrorIs(t, err, apperror.ErrCommodityNotFound)
}
