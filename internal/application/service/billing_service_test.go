package service

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBilling_DineInToSettlement(t *testing.T) {
	f := newFixture(t)

	bill := f.openBill(t, 2)
	assert.Equal(t, enum.BillStatusOpen, bill.Status)
	assert.Equal(t, 2, bill.Pax)
	assertDec(t, "200", bill.GrossAmount, "gross")
	assert.Equal(t, "Occupied", f.tableStatus(t, f.table.ID))

	bill, err := f.billing.ApplyDiscount(f.ctx, &ApplyDiscountInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Discount: DiscountInput{Type: enum.DiscountTypePercentage, Value: dec("10")},
	})
	require.NoError(t, err)
	assertDec(t, "20", bill.DiscountAmount, "discount")
	assertDec(t, "180", bill.NetAmount, "net")

	bill, err = f.billing.Settle(f.ctx, &SettleInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Payments: []PaymentInput{{PaymentMode: "cash", Amount: dec("180")}},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusSettled, bill.Status)
	require.NotNil(t, bill.BillNo)
	assert.Equal(t, "MR-1", *bill.BillNo)
	require.Len(t, bill.Settlements, 1)
	assert.Equal(t, "Cash", bill.Settlements[0].PaymentMode)
	assertDec(t, "180", bill.Settlements[0].Amount, "settled")
	assert.Equal(t, "Free", f.tableStatus(t, f.table.ID))

	_, err = f.billing.Settle(f.ctx, &SettleInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Payments: []PaymentInput{{PaymentMode: "cash", Amount: dec("180")}},
	})
	requireAppError(t, err, http.StatusConflict)

	var count int64
	require.NoError(t, f.db.Model(&entity.Settlement{}).Where("bill_id = ?", bill.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Contains(t, f.events.Types(), ws.EventBillSettled)
}

func TestBilling_CreateBillWritesOneHeaderAndEveryLine(t *testing.T) {
	f := newFixture(t)
	soup := f.addItem(t, "Tomato Soup", "80", nil)
	naan := f.addItem(t, "Butter Naan", "40", nil)

	res, err := f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:  f.cashier.ID,
		TableID: &f.table.ID,
		Items: []BillItemInput{
			{MenuItemID: f.item.ID, Qty: 1},
			{MenuItemID: soup.ID, Qty: 2},
			{MenuItemID: naan.ID, Qty: 3, Instructions: "extra butter"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.KOTNo)

	var bills, details int64
	require.NoError(t, f.db.Model(&entity.Bill{}).Count(&bills).Error)
	require.NoError(t, f.db.Model(&entity.BillDetail{}).Where("bill_id = ?", res.Bill.ID).Count(&details).Error)
	assert.Equal(t, int64(1), bills)
	assert.Equal(t, int64(3), details)
	assertDec(t, "380", res.Bill.GrossAmount, "gross")
	assert.Contains(t, f.events.Types(), ws.EventKOTCreated)
}

func TestBilling_CreateBillRejectsBusyTable(t *testing.T) {
	f := newFixture(t)
	f.openBill(t, 1)

	_, err := f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:  f.cashier.ID,
		TableID: &f.table.ID,
		Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
	})
	requireAppError(t, err, http.StatusConflict)
}

func TestBilling_CreateBillValidatesItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.billing.CreateBill(f.ctx, &CreateBillInput{UserID: f.cashier.ID, TableID: &f.table.ID})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	_, err = f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:  f.cashier.ID,
		TableID: &f.table.ID,
		Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: 0}},
	})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "items[0].qty", appErr.Errors[0].Field)

	var bills int64
	require.NoError(t, f.db.Model(&entity.Bill{}).Count(&bills).Error)
	assert.Zero(t, bills)
	assert.Equal(t, "Free", f.tableStatus(t, f.table.ID))
}

func TestBilling_KOTNumbersIncreasePerBill(t *testing.T) {
	f := newFixture(t)
	first := f.openBill(t, 1)

	res, err := f.billing.CreateKOT(f.ctx, &CreateKOTInput{
		CreateBillInput: CreateBillInput{
			UserID:  f.cashier.ID,
			TableID: &f.table.ID,
			Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, res.Bill.ID)
	assert.Equal(t, 2, res.KOTNo)

	res, err = f.billing.CreateKOT(f.ctx, &CreateKOTInput{
		CreateBillInput: CreateBillInput{
			UserID: f.cashier.ID,
			Items:  []BillItemInput{{MenuItemID: f.item.ID, Qty: 2}},
		},
		BillID: &first.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.KOTNo)
	assert.Equal(t, 3, res.Bill.LastKOTNo)
	assertDec(t, "400", res.Bill.GrossAmount, "gross")

	var kots int64
	require.NoError(t, f.db.Model(&entity.KOT{}).Where("bill_id = ?", first.ID).Count(&kots).Error)
	assert.Equal(t, int64(3), kots)
}

func TestBilling_ReverseKOT(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 2)

	_, err := f.billing.CreateReverseKOT(f.ctx, &ReverseKOTInput{
		BillID: bill.ID,
		UserID: f.cashier.ID,
		Reason: "guest changed mind",
		Lines:  []ReverseLineInput{{MenuItemID: f.item.ID, KOTNo: 1, Qty: 3}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)
	assertDec(t, "200", f.reload(t, bill.ID).GrossAmount, "gross after rejected reversal")

	res, err := f.billing.CreateReverseKOT(f.ctx, &ReverseKOTInput{
		BillID: bill.ID,
		UserID: f.cashier.ID,
		Reason: "guest changed mind",
		Lines:  []ReverseLineInput{{MenuItemID: f.item.ID, KOTNo: 1, Qty: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.KOTNo)
	assertDec(t, "100", res.Bill.GrossAmount, "gross")
	require.Len(t, res.Bill.Details, 1)
	assert.Equal(t, 2, res.Bill.Details[0].Qty)
	assert.Equal(t, 1, res.Bill.Details[0].RevQty)

	_, err = f.billing.CreateReverseKOT(f.ctx, &ReverseKOTInput{
		BillID: bill.ID,
		UserID: f.cashier.ID,
		Lines:  []ReverseLineInput{{MenuItemID: f.item.ID, KOTNo: 1, Qty: 2}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	_, err = f.billing.CreateReverseKOT(f.ctx, &ReverseKOTInput{
		BillID: bill.ID,
		UserID: f.cashier.ID,
		Lines:  []ReverseLineInput{{MenuItemID: f.item.ID, KOTNo: 7, Qty: 1}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Contains(t, f.events.Types(), ws.EventKOTReversed)
}

func TestBilling_SettleRequiresExactAmount(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 2)

	_, err := f.billing.Settle(f.ctx, &SettleInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Payments: []PaymentInput{{PaymentMode: "Cash", Amount: dec("100")}},
	})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "payments", appErr.Errors[0].Field)

	_, err = f.billing.Settle(f.ctx, &SettleInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Payments: []PaymentInput{{PaymentMode: "Cheque", Amount: dec("200")}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	stored := f.reload(t, bill.ID)
	assert.Equal(t, enum.BillStatusOpen, stored.Status)
	assert.Nil(t, stored.BillNo)
	var count int64
	require.NoError(t, f.db.Model(&entity.Settlement{}).Count(&count).Error)
	assert.Zero(t, count)

	settled, err := f.billing.Settle(f.ctx, &SettleInput{
		BillID: bill.ID,
		UserID: f.cashier.ID,
		Payments: []PaymentInput{
			{PaymentMode: "Cash", Amount: dec("150")},
			{PaymentMode: "UPI", Amount: dec("50"), Reference: "UTR123"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, settled.Settlements, 2)
}

func TestBilling_StaleVersionIsRejected(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)
	stale := bill.Version

	_, err := f.billing.CreateKOT(f.ctx, &CreateKOTInput{
		CreateBillInput: CreateBillInput{
			UserID: f.cashier.ID,
			Items:  []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
		},
		BillID: &bill.ID,
	})
	require.NoError(t, err)

	_, err = f.billing.ApplyDiscount(f.ctx, &ApplyDiscountInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Version:  &stale,
		Discount: DiscountInput{Type: enum.DiscountTypeFlat, Value: dec("10")},
	})
	require.ErrorIs(t, err, apperror.ErrStaleWrite)
	assert.True(t, f.reload(t, bill.ID).DiscountAmount.IsZero())
}

func TestBilling_FlatDiscountCannotExceedGross(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	_, err := f.billing.ApplyDiscount(f.ctx, &ApplyDiscountInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Discount: DiscountInput{Type: enum.DiscountTypeFlat, Value: dec("150")},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestBilling_MarkBilledThenAddKOTKeepsBillNumber(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	billed, err := f.billing.MarkBilled(f.ctx, bill.ID, f.cashier.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusBilled, billed.Status)
	require.NotNil(t, billed.BillNo)
	assert.Equal(t, "Billed", f.tableStatus(t, f.table.ID))

	res, err := f.billing.CreateKOT(f.ctx, &CreateKOTInput{
		CreateBillInput: CreateBillInput{
			UserID:  f.cashier.ID,
			TableID: &f.table.ID,
			Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, bill.ID, res.Bill.ID)
	assert.Equal(t, enum.BillStatusOpen, res.Bill.Status)
	require.NotNil(t, res.Bill.BillNo)
	assert.Equal(t, *billed.BillNo, *res.Bill.BillNo)
	assert.Equal(t, "Occupied", f.tableStatus(t, f.table.ID))

	again, err := f.billing.MarkBilled(f.ctx, bill.ID, f.cashier.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, *billed.BillNo, *again.BillNo)
	assertDec(t, "200", again.NetAmount, "net")
}

func TestBilling_NCBillSettlesWithoutPayment(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	bill, err := f.billing.SetNC(f.ctx, &SetNCInput{
		BillID: bill.ID,
		UserID: f.manager.ID,
		IsNC:   true,
		NC:     NCInput{Name: "Owner", Purpose: "tasting"},
	})
	require.NoError(t, err)
	assert.True(t, bill.NetAmount.IsZero())

	settled, err := f.billing.Settle(f.ctx, &SettleInput{BillID: bill.ID, UserID: f.cashier.ID})
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusSettled, settled.Status)
	assert.Empty(t, settled.Settlements)
}

func TestBilling_ReverseBillNeedsApproval(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	_, err := f.billing.ReverseBill(f.ctx, &ReverseBillInput{BillID: bill.ID, UserID: f.cashier.ID, Reason: "wrong table"})
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{Login: f.cashier.Username, Password: f.password})
	requireAppError(t, err, http.StatusForbidden)

	approval, err := f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{
		Login:    f.manager.Username,
		Password: f.password,
		BillID:   &bill.ID,
	})
	require.NoError(t, err)

	reversed, err := f.billing.ReverseBill(f.ctx, &ReverseBillInput{
		BillID:        bill.ID,
		UserID:        f.cashier.ID,
		Reason:        "wrong table",
		ApprovalToken: approval.Token,
	})
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusReversed, reversed.Status)
	require.NotNil(t, reversed.ReverseApprover)
	assert.Equal(t, f.manager.ID, *reversed.ReverseApprover)
	assert.Equal(t, f.cashier.ID, *reversed.ReversedBy)
	assert.Equal(t, "Free", f.tableStatus(t, f.table.ID))

	_, err = f.billing.ReverseBill(f.ctx, &ReverseBillInput{
		BillID:        bill.ID,
		UserID:        f.cashier.ID,
		Reason:        "again",
		ApprovalToken: approval.Token,
	})
	requireAppError(t, err, http.StatusConflict)
}

func TestBilling_ApprovalBoundToAnotherBill(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)
	other := f.addTable(t, "6")
	res, err := f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:  f.cashier.ID,
		TableID: &other.ID,
		Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
	})
	require.NoError(t, err)

	approval, err := f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{
		Login:    f.manager.Username,
		Password: f.password,
		BillID:   &res.Bill.ID,
	})
	require.NoError(t, err)

	_, err = f.billing.ReverseBill(f.ctx, &ReverseBillInput{
		BillID:        bill.ID,
		UserID:        f.cashier.ID,
		Reason:        "wrong table",
		ApprovalToken: approval.Token,
	})
	requireAppError(t, err, http.StatusForbidden)
}

func TestBilling_ApprovalMustNameTheBill(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	token, _, err := f.jwt.GenerateApprovalToken(f.manager.ID, ApprovalPurposeReverseBill, nil)
	require.NoError(t, err)

	_, err = f.billing.ReverseBill(f.ctx, &ReverseBillInput{
		BillID:        bill.ID,
		UserID:        f.cashier.ID,
		Reason:        "wrong table",
		ApprovalToken: token,
	})
	requireAppError(t, err, http.StatusForbidden)
	assert.Equal(t, enum.BillStatusOpen, f.reload(t, bill.ID).Status)

	_, err = f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{Login: f.manager.Username, Password: f.password})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "bill_id", appErr.Errors[0].Field)
}

func TestBilling_SettleFullyCancelledBill(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 2)

	res, err := f.billing.CreateReverseKOT(f.ctx, &ReverseKOTInput{
		BillID: bill.ID,
		UserID: f.cashier.ID,
		Reason: "guest left",
		Lines:  []ReverseLineInput{{MenuItemID: f.item.ID, KOTNo: 1, Qty: 2}},
	})
	require.NoError(t, err)
	assert.True(t, res.Bill.NetAmount.IsZero())

	_, err = f.billing.Settle(f.ctx, &SettleInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Payments: []PaymentInput{{PaymentMode: "Cash", Amount: dec("100")}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	settled, err := f.billing.Settle(f.ctx, &SettleInput{BillID: bill.ID, UserID: f.cashier.ID})
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusSettled, settled.Status)
	assert.Empty(t, settled.Settlements)
	assert.Equal(t, "Free", f.tableStatus(t, f.table.ID))
}

func TestBilling_ParallelKOTsShareOneBill(t *testing.T) {
	f := newFixture(t)

	const punches = 8
	results := make([]*KOTResult, punches)
	errs := make([]error, punches)
	var wg sync.WaitGroup
	for i := 0; i < punches; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.billing.CreateKOT(f.ctx, &CreateKOTInput{
				CreateBillInput: CreateBillInput{
					UserID:  f.cashier.ID,
					TableID: &f.table.ID,
					Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
				},
			})
		}(i)
	}
	wg.Wait()

	billIDs := map[uuid.UUID]bool{}
	kotNos := make([]int, 0, punches)
	for i := range results {
		require.NoError(t, errs[i])
		billIDs[results[i].Bill.ID] = true
		kotNos = append(kotNos, results[i].KOTNo)
	}
	assert.Len(t, billIDs, 1)
	sort.Ints(kotNos)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, kotNos)

	var bills int64
	require.NoError(t, f.db.Model(&entity.Bill{}).Where("table_id = ?", f.table.ID).Count(&bills).Error)
	assert.Equal(t, int64(1), bills)
	for id := range billIDs {
		assertDec(t, "800", f.reload(t, id).GrossAmount, "gross")
	}
}

func TestBilling_ParallelSettleSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	const tills = 6
	errs := make([]error, tills)
	var wg sync.WaitGroup
	for i := 0; i < tills; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.billing.Settle(f.ctx, &SettleInput{
				BillID:   bill.ID,
				UserID:   f.cashier.ID,
				Payments: []PaymentInput{{PaymentMode: "Cash", Amount: dec("100")}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	var rows int64
	require.NoError(t, f.db.Model(&entity.Settlement{}).Where("bill_id = ?", bill.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, enum.BillStatusSettled, f.reload(t, bill.ID).Status)
}

func TestBilling_OneActiveBillPerTable(t *testing.T) {
	f := newFixture(t)
	f.openBill(t, 1)

	err := infraRepo.NewBillRepository(f.db).Create(f.ctx, &entity.Bill{
		OutletID:  f.outlet.ID,
		TableID:   &f.table.ID,
		OrderType: enum.OrderTypeDineIn,
		Status:    enum.BillStatusOpen,
		CreatedBy: f.cashier.ID,
	})
	require.Error(t, err)
	assert.True(t, infraRepo.IsDuplicateKey(err), "got %v", err)
}

func TestBilling_TransferTable(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)
	target := f.addTable(t, "9")

	moved, err := f.billing.TransferTable(f.ctx, &TransferTableInput{BillID: bill.ID, TableID: target.ID, UserID: f.cashier.ID})
	require.NoError(t, err)
	assert.Equal(t, target.ID, *moved.TableID)
	assert.Equal(t, "Free", f.tableStatus(t, f.table.ID))
	assert.Equal(t, "Occupied", f.tableStatus(t, target.ID))

	f.openBill(t, 1)
	_, err = f.billing.TransferTable(f.ctx, &TransferTableInput{BillID: bill.ID, TableID: f.table.ID, UserID: f.cashier.ID})
	requireAppError(t, err, http.StatusConflict)
}

func TestBilling_OutletScopeHidesOtherOutlets(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	_, err := f.billing.GetBill(f.outletCtx(), bill.ID)
	require.NoError(t, err)

	otherOutlet := infraRepo.WithOutlet(context.Background(), uuid.New())
	_, err = f.billing.GetBill(otherOutlet, bill.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestBilling_QuickBillNeedsNoTable(t *testing.T) {
	f := newFixture(t)

	res, err := f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:   f.cashier.ID,
		OutletID: &f.outlet.ID,
		Items:    []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.OrderTypeQuickBill, res.Bill.OrderType)
	assert.Nil(t, res.Bill.TableID)

	_, err = f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:    f.cashier.ID,
		OutletID:  &f.outlet.ID,
		OrderType: enum.OrderTypeDineIn,
		Items:     []BillItemInput{{MenuItemID: f.item.ID, Qty: 1}},
	})
	requireAppError(t, err, http.StatusUnprocessableEntity)
}
