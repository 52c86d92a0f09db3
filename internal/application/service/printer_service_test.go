package service

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) addPrinter(t *testing.T, name string, purpose enum.PrinterPurpose, categoryID *uuid.UUID) *entity.PrinterSetting {
	t.Helper()
	setting := &entity.PrinterSetting{
		OutletID:          f.outlet.ID,
		KitchenCategoryID: categoryID,
		Name:              name,
		Purpose:           purpose,
		Connection:        enum.PrinterConnectionNone,
		PaperWidth:        32,
		Copies:            1,
		Enabled:           true,
	}
	require.NoError(t, f.db.Create(setting).Error)
	return setting
}

func TestResolvePrinter_MostSpecificWins(t *testing.T) {
	dept, cat := uuid.New(), uuid.New()
	settings := []entity.PrinterSetting{
		{Name: "Fallback", Enabled: true},
		{Name: "Bar", DepartmentID: &dept, Enabled: true},
		{Name: "Tandoor", KitchenCategoryID: &cat, Enabled: true},
		{Name: "Disabled", KitchenCategoryID: &cat, DepartmentID: &dept, Enabled: false},
	}

	assert.Equal(t, "Fallback", ResolvePrinter(settings, nil, nil).Name)
	assert.Equal(t, "Bar", ResolvePrinter(settings, &dept, nil).Name)
	assert.Equal(t, "Tandoor", ResolvePrinter(settings, &dept, &cat).Name)
	other := uuid.New()
	assert.Equal(t, "Fallback", ResolvePrinter(settings, &other, &other).Name)
	assert.Nil(t, ResolvePrinter(settings[3:], &dept, &cat))
}

func TestPrinter_KOTRoutesByKitchenCategory(t *testing.T) {
	f := newFixture(t)
	tandoor := &entity.KitchenCategory{Name: "Tandoor", IsActive: true}
	require.NoError(t, f.db.Create(tandoor).Error)
	f.addPrinter(t, "Main Kitchen", enum.PrinterPurposeKOT, nil)
	f.addPrinter(t, "Tandoor", enum.PrinterPurposeKOT, &tandoor.ID)
	naan := f.addItem(t, "Butter Naan", "40", &tandoor.ID)

	_, err := f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:  f.cashier.ID,
		TableID: &f.table.ID,
		Items: []BillItemInput{
			{MenuItemID: f.item.ID, Qty: 1},
			{MenuItemID: naan.ID, Qty: 2, Instructions: "extra butter"},
		},
	})
	require.NoError(t, err)
	f.printer.Wait()

	jobs := f.spooler.Jobs()
	require.Len(t, jobs, 2)
	byPrinter := map[string]*printer.Job{}
	for _, job := range jobs {
		assert.Equal(t, printer.JobKOT, job.Kind)
		byPrinter[job.Target.Name] = job
	}
	require.Contains(t, byPrinter, "Tandoor")
	ticket, ok := byPrinter["Tandoor"].Ticket.(entity.KOTTicket)
	require.True(t, ok)
	require.Len(t, ticket.Lines, 1)
	assert.Equal(t, "Butter Naan", ticket.Lines[0].Name)
	assert.Equal(t, "5", ticket.Table)
	assert.True(t, bytes.Contains(byPrinter["Tandoor"].Data, []byte("extra butter")))

	var kot entity.KOT
	require.NoError(t, f.db.First(&kot, "kot_no = ?", 1).Error)
	assert.True(t, kot.Printed)
	assert.Empty(t, kot.PrintError)
}

func TestPrinter_UnroutedLinesAreRecorded(t *testing.T) {
	f := newFixture(t)
	f.openBill(t, 1)
	f.printer.Wait()

	assert.Empty(t, f.spooler.Jobs())
	var kot entity.KOT
	require.NoError(t, f.db.First(&kot, "kot_no = ?", 1).Error)
	assert.Contains(t, kot.PrintError, "no printer")
}

func TestPrinter_MarkBilledPrintsBill(t *testing.T) {
	f := newFixture(t)
	f.addPrinter(t, "Counter", enum.PrinterPurposeBill, nil)
	bill := f.openBill(t, 2)

	_, err := f.billing.MarkBilled(f.ctx, bill.ID, f.cashier.ID, nil)
	require.NoError(t, err)
	f.printer.Wait()

	var billJobs []*printer.Job
	for _, job := range f.spooler.Jobs() {
		if job.Kind == printer.JobBill {
			billJobs = append(billJobs, job)
		}
	}
	require.Len(t, billJobs, 1)
	assert.Equal(t, "MR-1", billJobs[0].Reference)
	assert.True(t, bytes.Contains(billJobs[0].Data, []byte("200.00")))
}

func TestPrinter_ReprintRequiresBilledBill(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	_, err := f.billing.ReprintBill(f.ctx, bill.ID)
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestPrinter_TestPrintAndStatus(t *testing.T) {
	f := newFixture(t)
	setting := f.addPrinter(t, "Counter", enum.PrinterPurposeBill, nil)

	ticket, err := f.printer.TestPrint(f.ctx, setting.ID)
	require.NoError(t, err)
	assert.Equal(t, "Counter", ticket.Kitchen)
	require.Len(t, f.spooler.Jobs(), 1)
	assert.Equal(t, printer.JobTest, f.spooler.Jobs()[0].Kind)

	_, err = f.printer.TestPrint(f.ctx, uuid.New())
	requireAppError(t, err, http.StatusNotFound)

	status, err := f.printer.Status(f.ctx, f.outlet.ID)
	require.NoError(t, err)
	assert.Equal(t, "recording", status.Spooler)
	require.Len(t, status.Printers, 1)
	assert.Equal(t, "Counter", status.Printers[0].Name)
}

func TestFormatKOT_ReverseTicket(t *testing.T) {
	data := FormatKOT(&entity.KOTTicket{
		OutletName: "Main Restaurant",
		KOTNo:      3,
		Reverse:    true,
		Table:      "5",
		Lines:      []entity.KOTTicketLine{{Name: "Paneer Tikka", Qty: 1, Instructions: "Reason: guest left"}},
	}, 32)

	assert.True(t, bytes.Contains(data, []byte("CANCELLED KOT #3")))
	assert.True(t, bytes.Contains(data, []byte("Paneer Tikka")))
	assert.True(t, bytes.Contains(data, []byte("Reason: guest left")))
}
