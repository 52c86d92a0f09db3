package service

import (
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BillTotals is the derived money block of a bill header
type BillTotals struct {
	Gross    decimal.Decimal `json:"gross_amount"`
	Discount decimal.Decimal `json:"discount_amount"`
	Taxable  decimal.Decimal `json:"taxable_amount"`
	CGST     decimal.Decimal `json:"cgst_amount"`
	SGST     decimal.Decimal `json:"sgst_amount"`
	IGST     decimal.Decimal `json:"igst_amount"`
	CESS     decimal.Decimal `json:"cess_amount"`
	RoundOff decimal.Decimal `json:"round_off"`
	Net      decimal.Decimal `json:"net_amount"`
}

// Tax returns the sum of the tax components
func (t BillTotals) Tax() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST).Add(t.CESS)
}

// GrossAmount sums the active quantity of every chargeable line
func GrossAmount(details []entity.BillDetail) decimal.Decimal {
	gross := decimal.Zero
	for i := range details {
		d := &details[i]
		if d.IsNC || d.ActiveQty() <= 0 {
			continue
		}
		gross = gross.Add(d.Rate.Mul(decimal.NewFromInt(int64(d.ActiveQty()))))
	}
	return gross.Round(2)
}

// DiscountAmount converts a discount type/value into money, capped at gross
func DiscountAmount(gross decimal.Decimal, discountType enum.DiscountType, value decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch discountType {
	case enum.DiscountTypePercentage:
		amount = gross.Mul(value).Div(hundred).Round(2)
	case enum.DiscountTypeFlat:
		amount = value.Round(2)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(gross) {
		return gross
	}
	return amount
}

// CalculateTotals derives the bill totals from its lines, discount and rates.
// Net is rounded to the nearest rupee and the difference kept as round-off.
func CalculateTotals(details []entity.BillDetail, discountType enum.DiscountType, discountValue decimal.Decimal, rates entity.TaxRates, nc bool) BillTotals {
	t := BillTotals{Gross: GrossAmount(details)}
	if nc {
		return t
	}

	t.Discount = DiscountAmount(t.Gross, discountType, discountValue)
	t.Taxable = t.Gross.Sub(t.Discount)
	t.CGST = taxOn(t.Taxable, rates.CGST)
	t.SGST = taxOn(t.Taxable, rates.SGST)
	t.IGST = taxOn(t.Taxable, rates.IGST)
	t.CESS = taxOn(t.Taxable, rates.CESS)

	total := t.Taxable.Add(t.Tax())
	t.RoundOff = total.Round(0).Sub(total)
	t.Net = total.Add(t.RoundOff)
	return t
}

func taxOn(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(rate).Div(hundred).Round(2)
}

// ApplyTotals recomputes the bill header from details and snapshots rates onto it
func ApplyTotals(bill *entity.Bill, details []entity.BillDetail, rates entity.TaxRates) BillTotals {
	t := CalculateTotals(details, bill.DiscountType, bill.DiscountValue, rates, bill.IsNC)

	bill.GrossAmount = t.Gross
	bill.DiscountAmount = t.Discount
	bill.TaxableAmount = t.Taxable
	bill.CGSTRate = rates.CGST
	bill.SGSTRate = rates.SGST
	bill.IGSTRate = rates.IGST
	bill.CESSRate = rates.CESS
	bill.CGSTAmount = t.CGST
	bill.SGSTAmount = t.SGST
	bill.IGSTAmount = t.IGST
	bill.CESSAmount = t.CESS
	bill.RoundOff = t.RoundOff
	bill.NetAmount = t.Net
	return t
}
