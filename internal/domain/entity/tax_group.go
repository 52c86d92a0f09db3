package entity

import "github.com/shopspring/decimal"

// TaxGroup holds the GST component rates, in percent, applied to a bill
type TaxGroup struct {
	Model
	Name     string          `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	CGSTRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"cgst_rate"`
	SGSTRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"sgst_rate"`
	IGSTRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"igst_rate"`
	CESSRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"cess_rate"`
	IsActive bool            `gorm:"not null" json:"is_active"`
}

func (TaxGroup) TableName() string { return "tax_groups" }

func (g *TaxGroup) SetDefaults() { g.IsActive = true }

// Rates returns the rates held by the group
func (g *TaxGroup) Rates() TaxRates {
	return TaxRates{CGST: g.CGSTRate, SGST: g.SGSTRate, IGST: g.IGSTRate, CESS: g.CESSRate}
}

// TaxRates is a resolved set of GST component rates in percent
type TaxRates struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
	CESS decimal.Decimal `json:"cess"`
}

// Total returns the combined rate
func (r TaxRates) Total() decimal.Decimal {
	return r.CGST.Add(r.SGST).Add(r.IGST).Add(r.CESS)
}
