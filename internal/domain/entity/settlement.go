package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Settlement is one tender applied to a bill. Replaced rows are kept with
// Superseded set.
type Settlement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	OutletID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"outlet_id"`
	PaymentModeID *uuid.UUID      `gorm:"type:uuid" json:"payment_mode_id,omitempty"`
	PaymentMode   string          `gorm:"size:50;not null;index" json:"payment_mode"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reference     string          `gorm:"size:100" json:"reference,omitempty"`
	Superseded    bool            `gorm:"not null;index" json:"superseded"`
	SupersededAt  *time.Time      `json:"superseded_at,omitempty"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`

	Bill *Bill `gorm:"foreignKey:BillID" json:"bill,omitempty"`
}

// BeforeCreate generates a UUID before creating a new settlement
func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Settlement model
func (Settlement) TableName() string {
	return "settlements"
}

// SettlementLog is an append-only audit row written when a settlement is replaced
type SettlementLog struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	OldPaymentMode string          `gorm:"size:50" json:"old_payment_mode"`
	OldAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"old_amount"`
	NewPaymentMode string          `gorm:"size:50" json:"new_payment_mode"`
	NewAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"new_amount"`
	EditedBy       uuid.UUID       `gorm:"type:uuid;not null" json:"edited_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new settlement log
func (l *SettlementLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SettlementLog model
func (SettlementLog) TableName() string {
	return "settlement_logs"
}
