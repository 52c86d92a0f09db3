package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaster_CreateChecksParents(t *testing.T) {
	f := newFixture(t)

	_, err := f.masters.States.Create(f.ctx, &entity.State{CountryID: uuid.New(), Name: "Maharashtra", IsActive: true})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "country_id", appErr.Errors[0].Field)

	country, err := f.masters.Countries.Create(f.ctx, &entity.Country{Name: "India", Code: "IN", IsActive: true})
	require.NoError(t, err)
	state, err := f.masters.States.Create(f.ctx, &entity.State{CountryID: country.ID, Name: "Maharashtra", IsActive: true})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, state.ID)
}

func TestMaster_CreateIgnoresClientID(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	unit := &entity.Unit{Name: "Plate"}
	unit.ID = id
	created, err := f.masters.Units.Create(f.ctx, unit)
	require.NoError(t, err)
	assert.NotEqual(t, id, created.ID)
}

func TestMaster_TaxGroupRatesAreBounded(t *testing.T) {
	f := newFixture(t)

	_, err := f.masters.TaxGroups.Create(f.ctx, &entity.TaxGroup{Name: "Bad", CGSTRate: dec("120"), IsActive: true})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "cgst_rate", appErr.Errors[0].Field)

	_, err = f.masters.TaxGroups.Create(f.ctx, &entity.TaxGroup{Name: "Bad", SGSTRate: dec("-1"), IsActive: true})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	group, err := f.masters.TaxGroups.Create(f.ctx, &entity.TaxGroup{Name: "GST 5", CGSTRate: dec("2.499"), SGSTRate: dec("2.5"), IsActive: true})
	require.NoError(t, err)
	assertDec(t, "2.5", group.CGSTRate, "cgst")
}

func TestMaster_TableStatusIsServerOwned(t *testing.T) {
	f := newFixture(t)

	table, err := f.masters.Tables.Create(f.ctx, &entity.DiningTable{
		OutletID: f.outlet.ID,
		Name:     "12",
		Status:   enum.TableStatusBilled,
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, enum.TableStatusFree, table.Status)

	f.openBill(t, 1)
	updated, err := f.masters.Tables.Update(f.ctx, f.table.ID, func(tbl *entity.DiningTable) error {
		tbl.Capacity = 6
		tbl.Status = enum.TableStatusFree
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Capacity)
	assert.Equal(t, enum.TableStatusOccupied, updated.Status)
}

func TestMaster_TableWithActiveBillCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	err := f.masters.Tables.Delete(f.ctx, f.table.ID)
	requireAppError(t, err, http.StatusConflict)

	_, err = f.billing.Settle(f.ctx, &SettleInput{
		BillID:   bill.ID,
		UserID:   f.cashier.ID,
		Payments: []PaymentInput{{PaymentMode: "Cash", Amount: dec("100")}},
	})
	require.NoError(t, err)
	require.NoError(t, f.masters.Tables.Delete(f.ctx, f.table.ID))

	_, err = f.masters.Tables.Get(f.ctx, f.table.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestMaster_OutletBillSequenceIsServerOwned(t *testing.T) {
	f := newFixture(t)

	updated, err := f.masters.Outlets.Update(f.ctx, f.outlet.ID, func(o *entity.Outlet) error {
		o.Name = "Main Dining"
		o.BillSeq = 900
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Main Dining", updated.Name)
	assert.Zero(t, updated.BillSeq)
}

func TestMaster_ListFiltersAndScopes(t *testing.T) {
	f := newFixture(t)
	hotelID := f.outlet.HotelID
	other, err := f.masters.Outlets.Create(f.ctx, &entity.Outlet{HotelID: hotelID, Name: "Rooftop", Code: "RT", IsActive: true})
	require.NoError(t, err)
	_, err = f.masters.Tables.Create(f.ctx, &entity.DiningTable{OutletID: other.ID, Name: "R1", IsActive: true})
	require.NoError(t, err)

	all, err := f.masters.Tables.List(f.ctx, MasterQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	filtered, err := f.masters.Tables.List(f.ctx, MasterQuery{Filters: map[string]string{"outlet_id": other.ID.String()}})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, "R1", filtered.Items[0].Name)

	scoped, err := f.masters.Tables.List(f.outletCtx(), MasterQuery{})
	require.NoError(t, err)
	require.Len(t, scoped.Items, 1)
	assert.Equal(t, "5", scoped.Items[0].Name)

	_, err = f.masters.Tables.List(f.ctx, MasterQuery{Filters: map[string]string{"outlet_id": "not-a-uuid"}})
	requireAppError(t, err, http.StatusUnprocessableEntity)
	_, err = f.masters.Tables.List(f.ctx, MasterQuery{Filters: map[string]string{"is_active": "maybe"}})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	ignored, err := f.masters.Tables.List(f.ctx, MasterQuery{Filters: map[string]string{"name": "R1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ignored.Pagination.Total)
}

func TestMaster_OutletBoundCallerCannotTouchOtherOutlets(t *testing.T) {
	f := newFixture(t)
	other, err := f.masters.Outlets.Create(f.ctx, &entity.Outlet{HotelID: f.outlet.HotelID, Name: "Rooftop", Code: "RT", IsActive: true})
	require.NoError(t, err)
	foreign, err := f.masters.Tables.Create(f.ctx, &entity.DiningTable{OutletID: other.ID, Name: "R1", IsActive: true})
	require.NoError(t, err)

	ctx := f.outletCtx()
	_, err = f.masters.Tables.Get(ctx, foreign.ID)
	requireAppError(t, err, http.StatusNotFound)

	_, err = f.masters.Tables.Create(ctx, &entity.DiningTable{OutletID: other.ID, Name: "R2", IsActive: true})
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.masters.Tables.Update(ctx, f.table.ID, func(tbl *entity.DiningTable) error {
		tbl.OutletID = other.ID
		return nil
	})
	requireAppError(t, err, http.StatusForbidden)
}

func TestMaster_PrinterSettingValidation(t *testing.T) {
	f := newFixture(t)
	category := &entity.KitchenCategory{Name: "Tandoor", IsActive: true}
	require.NoError(t, f.db.Create(category).Error)

	cases := []struct {
		name    string
		setting entity.PrinterSetting
		field   string
	}{
		{"unknown purpose", entity.PrinterSetting{Purpose: "LABEL", Connection: enum.PrinterConnectionNone}, "purpose"},
		{"network without address", entity.PrinterSetting{Purpose: enum.PrinterPurposeKOT, Connection: enum.PrinterConnectionNetwork}, "address"},
		{"usb without path", entity.PrinterSetting{Purpose: enum.PrinterPurposeKOT, Connection: enum.PrinterConnectionUSB}, "usb_path"},
		{"bill printer on a category", entity.PrinterSetting{Purpose: enum.PrinterPurposeBill, Connection: enum.PrinterConnectionNone, KitchenCategoryID: &category.ID}, "kitchen_category_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setting := tc.setting
			setting.OutletID = f.outlet.ID
			setting.Name = "Kitchen"
			_, err := f.masters.PrinterSettings.Create(f.ctx, &setting)
			appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
			assert.Equal(t, tc.field, appErr.Errors[0].Field)
		})
	}

	created, err := f.masters.PrinterSettings.Create(f.ctx, &entity.PrinterSetting{
		OutletID:          f.outlet.ID,
		KitchenCategoryID: &category.ID,
		Name:              "Tandoor",
		Purpose:           enum.PrinterPurposeKOT,
		Connection:        enum.PrinterConnectionNetwork,
		Address:           "192.168.1.50:9100",
		Enabled:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, 32, created.PaperWidth)
}

func TestMaster_PaymentModesOrderedBySortOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.masters.PaymentModes.Create(f.ctx, &entity.PaymentMode{Name: "Wallet", SortOrder: -1, IsActive: true})
	require.NoError(t, err)

	modes, err := f.masters.PaymentModes.List(f.ctx, MasterQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, modes.Items)
	assert.Equal(t, "Wallet", modes.Items[0].Name)

	cash, err := f.masters.PaymentModes.List(context.Background(), MasterQuery{Filters: map[string]string{"is_cash": "true"}})
	require.NoError(t, err)
	require.Len(t, cash.Items, 1)
	assert.Equal(t, "Cash", cash.Items[0].Name)
}

func TestMaster_SkipScopeSeesEverything(t *testing.T) {
	f := newFixture(t)
	assert.True(t, infraRepo.SkipsOutletScope(f.ctx))
	assert.False(t, infraRepo.SkipsOutletScope(f.outletCtx()))
}
