package service

import (
	"testing"

	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func line(qty, rev int, rate string) entity.BillDetail {
	return entity.BillDetail{Qty: qty, RevQty: rev, Rate: dec(rate)}
}

func TestCalculateTotals_PercentageDiscountNoTax(t *testing.T) {
	details := []entity.BillDetail{line(2, 0, "100")}

	totals := CalculateTotals(details, enum.DiscountTypePercentage, dec("10"), entity.TaxRates{}, false)

	assertDec(t, "200", totals.Gross, "gross")
	assertDec(t, "20", totals.Discount, "discount")
	assertDec(t, "180", totals.Taxable, "taxable")
	assertDec(t, "0", totals.RoundOff, "round off")
	assertDec(t, "180", totals.Net, "net")
}

func TestCalculateTotals_TaxAndRoundOff(t *testing.T) {
	rates := entity.TaxRates{CGST: dec("2.5"), SGST: dec("2.5")}

	tests := []struct {
		name     string
		details  []entity.BillDetail
		cgst     string
		roundOff string
		net      string
	}{
		{"rounds up", []entity.BillDetail{line(1, 0, "105.50")}, "2.64", "0.22", "111"},
		{"rounds down", []entity.BillDetail{line(1, 0, "105")}, "2.63", "-0.26", "110"},
		{"exact", []entity.BillDetail{line(2, 0, "100")}, "5", "0", "210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := CalculateTotals(tt.details, enum.DiscountTypeNone, decimal.Zero, rates, false)
			assertDec(t, tt.cgst, totals.CGST, "cgst")
			assertDec(t, tt.cgst, totals.SGST, "sgst")
			assertDec(t, tt.roundOff, totals.RoundOff, "round off")
			assertDec(t, tt.net, totals.Net, "net")
		})
	}
}

func TestCalculateTotals_NegativeRoundOff(t *testing.T) {
	totals := CalculateTotals([]entity.BillDetail{line(1, 0, "110.25")}, enum.DiscountTypeNone, decimal.Zero, entity.TaxRates{}, false)

	assertDec(t, "-0.25", totals.RoundOff, "round off")
	assertDec(t, "110", totals.Net, "net")
}

func TestCalculateTotals_ReversedAndNCLinesExcluded(t *testing.T) {
	nc := line(1, 0, "500")
	nc.IsNC = true
	details := []entity.BillDetail{
		line(3, 1, "100"),
		line(1, 1, "250"),
		nc,
	}

	totals := CalculateTotals(details, enum.DiscountTypeNone, decimal.Zero, entity.TaxRates{}, false)

	assertDec(t, "200", totals.Gross, "gross")
	assertDec(t, "200", totals.Net, "net")
}

func TestCalculateTotals_FlatDiscountCappedAtGross(t *testing.T) {
	totals := CalculateTotals([]entity.BillDetail{line(1, 0, "80")}, enum.DiscountTypeFlat, dec("100"), entity.TaxRates{}, false)

	assertDec(t, "80", totals.Discount, "discount")
	assertDec(t, "0", totals.Net, "net")
}

func TestCalculateTotals_NCBillHasZeroNet(t *testing.T) {
	rates := entity.TaxRates{CGST: dec("2.5"), SGST: dec("2.5")}

	totals := CalculateTotals([]entity.BillDetail{line(2, 0, "100")}, enum.DiscountTypeFlat, dec("10"), rates, true)

	assertDec(t, "200", totals.Gross, "gross")
	assertDec(t, "0", totals.Tax(), "tax")
	assertDec(t, "0", totals.Net, "net")
}

func TestApplyTotals_SnapshotsRates(t *testing.T) {
	bill := &entity.Bill{DiscountType: enum.DiscountTypePercentage, DiscountValue: dec("10")}
	rates := entity.TaxRates{CGST: dec("9"), SGST: dec("9")}

	ApplyTotals(bill, []entity.BillDetail{line(1, 0, "1000")}, rates)

	assertDec(t, "9", bill.CGSTRate, "cgst rate")
	assertDec(t, "900", bill.TaxableAmount, "taxable")
	assertDec(t, "81", bill.CGSTAmount, "cgst")
	assertDec(t, "1062", bill.NetAmount, "net")
	assertDec(t, "162", bill.TaxAmount(), "tax")
}
