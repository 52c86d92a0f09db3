package entity

import "github.com/google/uuid"

// Unit of measure for menu items and stock
type Unit struct {
	Model
	Name      string `gorm:"size:50;not null" json:"name" binding:"required,max=50"`
	ShortName string `gorm:"size:10" json:"short_name" binding:"max=10"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

func (Unit) TableName() string { return "units" }

func (u *Unit) SetDefaults() { u.IsActive = true }

// Warehouse is a stock location, optionally attached to an outlet
type Warehouse struct {
	Model
	OutletID *uuid.UUID `gorm:"type:uuid;index" json:"outlet_id,omitempty"`
	Name     string     `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Location string     `gorm:"size:255" json:"location"`
	IsActive bool       `gorm:"not null" json:"is_active"`
}

func (Warehouse) TableName() string { return "warehouses" }

func (w *Warehouse) SetDefaults() { w.IsActive = true }

// Designation is a staff job title
type Designation struct {
	Model
	Name     string `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

func (Designation) TableName() string { return "designations" }

func (d *Designation) SetDefaults() { d.IsActive = true }

// UserType classifies staff accounts for reporting
type UserType struct {
	Model
	Name        string `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

func (UserType) TableName() string { return "user_types" }

func (u *UserType) SetDefaults() { u.IsActive = true }

// PaymentMode is a settlement tender (Cash, Card, UPI)
type PaymentMode struct {
	Model
	Name      string `gorm:"size:50;not null;uniqueIndex" json:"name" binding:"required,max=50"`
	IsCash    bool   `gorm:"not null" json:"is_cash"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

func (PaymentMode) TableName() string { return "payment_modes" }

func (p *PaymentMode) SetDefaults() { p.IsActive = true }
