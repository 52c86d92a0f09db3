package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable item of an outlet
type MenuItem struct {
	Model
	OutletID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"outlet_id" binding:"required"`
	KitchenCategoryID    *uuid.UUID      `gorm:"type:uuid;index" json:"kitchen_category_id,omitempty"`
	KitchenSubCategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"kitchen_sub_category_id,omitempty"`
	UnitID               *uuid.UUID      `gorm:"type:uuid" json:"unit_id,omitempty"`
	Name                 string          `gorm:"size:150;not null" json:"name" binding:"required,max=150"`
	ShortName            string          `gorm:"size:50" json:"short_name" binding:"max=50"`
	Code                 string          `gorm:"size:30;index" json:"code" binding:"max=30"`
	Rate                 decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"rate"`
	IsActive             bool            `gorm:"not null" json:"is_active"`
}

func (MenuItem) TableName() string { return "menu_items" }

func (m *MenuItem) SetDefaults() { m.IsActive = true }
