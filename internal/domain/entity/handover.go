package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handover is an immutable snapshot of a cashier shift handed to another user
type Handover struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OutletID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"outlet_id"`
	HandedBy       uuid.UUID       `gorm:"type:uuid;not null;index" json:"handed_by"`
	HandedTo       uuid.UUID       `gorm:"type:uuid;not null;index" json:"handed_to"`
	PeriodStart    time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd      time.Time       `gorm:"not null" json:"period_end"`
	BillCount      int             `gorm:"not null" json:"bill_count"`
	ItemCount      int             `gorm:"not null" json:"item_count"`
	NCCount        int             `gorm:"not null" json:"nc_count"`
	ReversedCount  int             `gorm:"not null" json:"reversed_count"`
	GrossAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	RoundOff       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"round_off"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	ExpectedCash   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"expected_cash"`
	CountedCash    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"counted_cash"`
	CashVariance   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cash_variance"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`

	Payments      []HandoverPayment      `gorm:"foreignKey:HandoverID" json:"payments"`
	Denominations []HandoverDenomination `gorm:"foreignKey:HandoverID" json:"denominations,omitempty"`
}

// BeforeCreate generates a UUID before creating a new handover
func (h *Handover) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Handover model
func (Handover) TableName() string {
	return "handovers"
}

// HandoverPayment is the per-tender total captured in a handover
type HandoverPayment struct {
	ID          uint            `gorm:"primary_key" json:"-"`
	HandoverID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	PaymentMode string          `gorm:"size:50;not null" json:"payment_mode"`
	Count       int             `gorm:"not null" json:"count"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// TableName returns the table name for the HandoverPayment model
func (HandoverPayment) TableName() string {
	return "handover_payments"
}

// HandoverDenomination is one line of the counted cash drawer
type HandoverDenomination struct {
	ID           uint            `gorm:"primary_key" json:"-"`
	HandoverID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Denomination decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"denomination"`
	Count        int             `gorm:"not null" json:"count"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// TableName returns the table name for the HandoverDenomination model
func (HandoverDenomination) TableName() string {
	return "handover_denominations"
}
