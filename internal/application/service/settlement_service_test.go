package service

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func (f *fixture) settle(t *testing.T, qty int, payments ...PaymentInput) *entity.Bill {
	t.Helper()
	bill := f.openBill(t, qty)
	bill, err := f.billing.Settle(f.ctx, &SettleInput{BillID: bill.ID, UserID: f.cashier.ID, Payments: payments})
	require.NoError(t, err)
	return bill
}

func TestSettlement_ReplaceSupersedesAndLogs(t *testing.T) {
	f := newFixture(t)
	bill := f.settle(t, 2, PaymentInput{PaymentMode: "Cash", Amount: dec("200")})

	replaced, err := f.settlement.Replace(f.ctx, &ReplaceSettlementInput{
		BillID: bill.ID,
		UserID: f.manager.ID,
		Payments: []PaymentInput{
			{PaymentMode: "Card", Amount: dec("120")},
			{PaymentMode: "UPI", Amount: dec("80")},
		},
	})
	require.NoError(t, err)
	require.Len(t, replaced, 2)

	live, err := f.billing.GetBill(f.ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, live.Settlements, 2)

	var superseded int64
	require.NoError(t, f.db.Model(&entity.Settlement{}).Where("bill_id = ? AND superseded = ?", bill.ID, true).Count(&superseded).Error)
	assert.Equal(t, int64(1), superseded)

	logs, err := f.settlement.Logs(f.ctx, &bill.ID, nil)
	require.NoError(t, err)
	require.Len(t, logs.Items, 2)
	byNew := map[string]entity.SettlementLog{}
	for _, l := range logs.Items {
		byNew[l.NewPaymentMode] = l
	}
	assert.Equal(t, "Cash", byNew["Card"].OldPaymentMode)
	assertDec(t, "200", byNew["Card"].OldAmount, "old amount")
	assertDec(t, "120", byNew["Card"].NewAmount, "new amount")
	assert.Equal(t, "", byNew["UPI"].OldPaymentMode)
	assert.True(t, byNew["UPI"].OldAmount.IsZero())
}

func TestSettlement_ReplaceMustMatchNet(t *testing.T) {
	f := newFixture(t)
	bill := f.settle(t, 1, PaymentInput{PaymentMode: "Cash", Amount: dec("100")})

	_, err := f.settlement.Replace(f.ctx, &ReplaceSettlementInput{
		BillID:   bill.ID,
		UserID:   f.manager.ID,
		Payments: []PaymentInput{{PaymentMode: "Card", Amount: dec("90")}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	live, err := f.billing.GetBill(f.ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, live.Settlements, 1)
	assert.Equal(t, "Cash", live.Settlements[0].PaymentMode)
}

func TestSettlement_ReplaceNeedsSettledBill(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	_, err := f.settlement.Replace(f.ctx, &ReplaceSettlementInput{
		BillID:   bill.ID,
		UserID:   f.manager.ID,
		Payments: []PaymentInput{{PaymentMode: "Cash", Amount: dec("100")}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestSettlement_SummaryIgnoresSuperseded(t *testing.T) {
	f := newFixture(t)
	first := f.settle(t, 1, PaymentInput{PaymentMode: "Cash", Amount: dec("100")})

	f.table = f.addTable(t, "7")
	f.settle(t, 3,
		PaymentInput{PaymentMode: "Cash", Amount: dec("50")},
		PaymentInput{PaymentMode: "Card", Amount: dec("250")},
	)

	_, err := f.settlement.Replace(f.ctx, &ReplaceSettlementInput{
		BillID:   first.ID,
		UserID:   f.manager.ID,
		Payments: []PaymentInput{{PaymentMode: "UPI", Amount: dec("100")}},
	})
	require.NoError(t, err)

	summary, err := f.settlement.Summary(f.ctx, repository.SettlementFilter{OutletID: &f.outlet.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assertDec(t, "400", summary.Amount, "total")

	totals := map[string]string{}
	for _, m := range summary.Modes {
		totals[m.PaymentMode] = m.Amount.StringFixed(2)
	}
	assert.Equal(t, map[string]string{"Cash": "50.00", "Card": "250.00", "UPI": "100.00"}, totals)

	cash, err := f.settlement.List(f.ctx, repository.SettlementFilter{OutletID: &f.outlet.ID, PaymentMode: "Cash"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cash.Pagination.Total)
}

func TestSettlement_ExportWritesWorkbook(t *testing.T) {
	f := newFixture(t)
	f.settle(t, 1, PaymentInput{PaymentMode: "Cash", Amount: dec("100")})

	var buf bytes.Buffer
	require.NoError(t, f.settlement.Export(f.ctx, repository.SettlementFilter{OutletID: &f.outlet.ID}, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Settlements")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MR-1", rows[1][1])
	assert.Equal(t, "Cash", rows[1][2])
}

func TestSettlementLogs_PairByPosition(t *testing.T) {
	old := []entity.Settlement{{PaymentMode: "Cash", Amount: dec("60")}, {PaymentMode: "Card", Amount: dec("40")}}
	replacement := []entity.Settlement{{PaymentMode: "UPI", Amount: dec("100")}}

	logs := settlementLogs(old[0].BillID, old[0].BillID, old, replacement)
	require.Len(t, logs, 2)
	assert.Equal(t, "Cash", logs[0].OldPaymentMode)
	assert.Equal(t, "UPI", logs[0].NewPaymentMode)
	assert.Equal(t, "Card", logs[1].OldPaymentMode)
	assert.Equal(t, "", logs[1].NewPaymentMode)
	assert.True(t, logs[1].NewAmount.IsZero())
}
