package service

import (
	"net/http"
	"testing"

	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) addTaxGroup(t *testing.T, name, cgst, sgst string) *entity.TaxGroup {
	t.Helper()
	group := &entity.TaxGroup{Name: name, CGSTRate: dec(cgst), SGSTRate: dec(sgst), IsActive: true}
	require.NoError(t, f.db.Create(group).Error)
	return group
}

func TestTax_DepartmentOverridesOutlet(t *testing.T) {
	f := newFixture(t)
	gst5 := f.addTaxGroup(t, "GST 5", "2.5", "2.5")
	gst18 := f.addTaxGroup(t, "GST 18", "9", "9")
	require.NoError(t, f.db.Model(f.outlet).Update("tax_group_id", gst5.ID).Error)

	bar := &entity.Department{OutletID: f.outlet.ID, Name: "Bar", TaxGroupID: &gst18.ID, IsActive: true}
	require.NoError(t, f.db.Create(bar).Error)
	garden := &entity.Department{OutletID: f.outlet.ID, Name: "Garden", IsActive: true}
	require.NoError(t, f.db.Create(garden).Error)

	res, err := f.tax.ResolveRates(f.ctx, f.outlet.ID, &bar.ID)
	require.NoError(t, err)
	assert.Equal(t, TaxSourceDepartment, res.Source)
	assert.Equal(t, "18", res.Total)

	res, err = f.tax.ResolveRates(f.ctx, f.outlet.ID, &garden.ID)
	require.NoError(t, err)
	assert.Equal(t, TaxSourceOutlet, res.Source)
	assert.Equal(t, "5", res.Total)

	res, err = f.tax.ResolveRates(f.ctx, f.outlet.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, TaxSourceOutlet, res.Source)
}

func TestTax_InactiveGroupResolvesToNone(t *testing.T) {
	f := newFixture(t)
	group := f.addTaxGroup(t, "Old GST", "6", "6")
	require.NoError(t, f.db.Model(group).Update("is_active", false).Error)
	require.NoError(t, f.db.Model(f.outlet).Update("tax_group_id", group.ID).Error)

	res, err := f.tax.ResolveRates(f.ctx, f.outlet.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, TaxSourceNone, res.Source)
	assert.True(t, res.Rates.Total().IsZero())
}

func TestTax_BillUsesOutletRates(t *testing.T) {
	f := newFixture(t)
	gst5 := f.addTaxGroup(t, "GST 5", "2.5", "2.5")
	require.NoError(t, f.db.Model(f.outlet).Update("tax_group_id", gst5.ID).Error)

	bill := f.openBill(t, 1)
	assertDec(t, "2.5", bill.CGSTAmount, "cgst")
	assertDec(t, "2.5", bill.SGSTAmount, "sgst")
	assertDec(t, "105", bill.NetAmount, "net")
}

func TestTax_CheckDepartmentRejectsForeignDepartment(t *testing.T) {
	f := newFixture(t)
	rooftop := &entity.Outlet{HotelID: f.outlet.HotelID, Name: "Rooftop", Code: "RT", IsActive: true}
	require.NoError(t, f.db.Create(rooftop).Error)
	foreign := &entity.Department{OutletID: rooftop.ID, Name: "Deck", IsActive: true}
	require.NoError(t, f.db.Create(foreign).Error)

	err := f.tax.CheckDepartment(f.ctx, f.outlet.ID, foreign.ID)
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "department_id", appErr.Errors[0].Field)
}
