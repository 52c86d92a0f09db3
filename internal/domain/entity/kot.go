package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KOT is a batch of lines sent to the kitchen. No is unique per bill and is
// never reused.
type KOT struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BillID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_kots_bill_no" json:"bill_id"`
	No         int        `gorm:"column:kot_no;not null;uniqueIndex:idx_kots_bill_no" json:"kot_no"`
	OutletID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"outlet_id"`
	TableID    *uuid.UUID `gorm:"type:uuid" json:"table_id,omitempty"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	Printed    bool       `gorm:"not null" json:"printed"`
	PrintError string     `gorm:"size:255" json:"print_error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	Details []BillDetail `gorm:"foreignKey:KOTID" json:"details,omitempty"`
}

// BeforeCreate generates a UUID before creating a new KOT
func (k *KOT) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the KOT model
func (KOT) TableName() string {
	return "kots"
}

// ReverseKOT records a cancellation of previously punched quantity. Rows are
// append-only.
type ReverseKOT struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BillID       uuid.UUID `gorm:"type:uuid;not null;index" json:"bill_id"`
	BillDetailID uuid.UUID `gorm:"type:uuid;not null;index" json:"bill_detail_id"`
	MenuItemID   uuid.UUID `gorm:"type:uuid;not null" json:"menu_item_id"`
	ItemName     string    `gorm:"size:150;not null" json:"item_name"`
	KOTNo        int       `gorm:"not null" json:"kot_no"`
	RevKOTNo     int       `gorm:"not null;index" json:"rev_kot_no"`
	Qty          int       `gorm:"not null" json:"qty"`
	Reason       string    `gorm:"size:255" json:"reason,omitempty"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new reverse KOT
func (r *ReverseKOT) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReverseKOT model
func (ReverseKOT) TableName() string {
	return "reverse_kots"
}
