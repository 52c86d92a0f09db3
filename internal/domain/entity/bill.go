package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill is the order header. It is opened by the first KOT, mutated by later
// KOTs, reversals and discounts, finalized by mark-billed and closed by
// settlement or reversal. Version guards concurrent mutations.
type Bill struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OutletID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"outlet_id"`
	DepartmentID    *uuid.UUID        `gorm:"type:uuid;index" json:"department_id,omitempty"`
	TableID         *uuid.UUID        `gorm:"type:uuid;index" json:"table_id,omitempty"`
	OrderType       enum.OrderType    `gorm:"size:20;not null" json:"order_type"`
	BillNo          *string           `gorm:"size:50;uniqueIndex" json:"bill_no,omitempty"`
	CustomerID      *uuid.UUID        `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName    string            `gorm:"size:150" json:"customer_name,omitempty"`
	CustomerMobile  string            `gorm:"size:20" json:"customer_mobile,omitempty"`
	CustomerAddress string            `gorm:"type:text" json:"customer_address,omitempty"`
	Pax             int               `gorm:"not null;default:0" json:"pax"`
	Status          enum.BillStatus   `gorm:"not null;default:0;index" json:"status"`
	GrossAmount     decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"gross_amount"`
	DiscountType    enum.DiscountType `gorm:"size:20" json:"discount_type,omitempty"`
	DiscountValue   decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"discount_value"`
	DiscountAmount  decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	DiscountReason  string            `gorm:"size:255" json:"discount_reason,omitempty"`
	TaxableAmount   decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"taxable_amount"`
	CGSTRate        decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"cgst_rate"`
	CGSTAmount      decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"cgst_amount"`
	SGSTRate        decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"sgst_rate"`
	SGSTAmount      decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"sgst_amount"`
	IGSTRate        decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"igst_rate"`
	IGSTAmount      decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"igst_amount"`
	CESSRate        decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"cess_rate"`
	CESSAmount      decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"cess_amount"`
	RoundOff        decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"round_off"`
	NetAmount       decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"net_amount"`
	IsNC            bool              `gorm:"not null" json:"is_nc"`
	NCName          string            `gorm:"size:150" json:"nc_name,omitempty"`
	NCPurpose       string            `gorm:"size:255" json:"nc_purpose,omitempty"`
	LastKOTNo       int               `gorm:"not null;default:0" json:"last_kot_no"`
	LastRevKOTNo    int               `gorm:"not null;default:0" json:"last_rev_kot_no"`
	Version         int64             `gorm:"not null;default:1" json:"version"`
	CreatedBy       uuid.UUID         `gorm:"type:uuid;not null" json:"created_by"`
	BilledBy        *uuid.UUID        `gorm:"type:uuid" json:"billed_by,omitempty"`
	SettledBy       *uuid.UUID        `gorm:"type:uuid" json:"settled_by,omitempty"`
	ReversedBy      *uuid.UUID        `gorm:"type:uuid" json:"reversed_by,omitempty"`
	ReverseApprover *uuid.UUID        `gorm:"type:uuid" json:"reverse_approver,omitempty"`
	ReverseReason   string            `gorm:"size:255" json:"reverse_reason,omitempty"`
	BilledAt        *time.Time        `json:"billed_at,omitempty"`
	SettledAt       *time.Time        `json:"settled_at,omitempty"`
	ReversedAt      *time.Time        `json:"reversed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Table       *DiningTable `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Details     []BillDetail `gorm:"foreignKey:BillID" json:"details,omitempty"`
	KOTs        []KOT        `gorm:"foreignKey:BillID" json:"kots,omitempty"`
	Reversals   []ReverseKOT `gorm:"foreignKey:BillID" json:"reversals,omitempty"`
	Settlements []Settlement `gorm:"foreignKey:BillID" json:"settlements,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// TaxAmount returns the sum of all tax components
func (b *Bill) TaxAmount() decimal.Decimal {
	return b.CGSTAmount.Add(b.SGSTAmount).Add(b.IGSTAmount).Add(b.CESSAmount)
}

// BillDetail is one item line punched on a KOT. Lines are never deleted;
// cancellations raise RevQty.
type BillDetail struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	KOTID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"kot_id"`
	KOTNo             int             `gorm:"not null" json:"kot_no"`
	MenuItemID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	ItemName          string          `gorm:"size:150;not null" json:"item_name"`
	KitchenCategoryID *uuid.UUID      `gorm:"type:uuid" json:"kitchen_category_id,omitempty"`
	Qty               int             `gorm:"not null" json:"qty"`
	RevQty            int             `gorm:"not null;default:0" json:"rev_qty"`
	Rate              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsNC              bool            `gorm:"not null" json:"is_nc"`
	Instructions      string          `gorm:"size:255" json:"instructions,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new bill detail
func (d *BillDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillDetail model
func (BillDetail) TableName() string {
	return "bill_details"
}

// ActiveQty is the quantity still billable after reversals
func (d *BillDetail) ActiveQty() int {
	return d.Qty - d.RevQty
}
