package entity

import "github.com/google/uuid"

// Brand groups hotels operating under one name
type Brand struct {
	Model
	Name        string `gorm:"size:150;not null" json:"name" binding:"required,max=150"`
	Code        string `gorm:"size:20" json:"code" binding:"max=20"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

func (Brand) TableName() string { return "brands" }

func (b *Brand) SetDefaults() { b.IsActive = true }

// Hotel is a property of a brand
type Hotel struct {
	Model
	BrandID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"brand_id" binding:"required"`
	CityID   *uuid.UUID `gorm:"type:uuid;index" json:"city_id,omitempty"`
	Name     string     `gorm:"size:150;not null" json:"name" binding:"required,max=150"`
	Address  string     `gorm:"type:text" json:"address"`
	Phone    string     `gorm:"size:30" json:"phone"`
	Email    string     `gorm:"size:150" json:"email" binding:"omitempty,email"`
	GSTIN    string     `gorm:"size:20" json:"gstin"`
	IsActive bool       `gorm:"not null" json:"is_active"`
}

func (Hotel) TableName() string { return "hotels" }

func (h *Hotel) SetDefaults() { h.IsActive = true }

// Outlet is a billing point (restaurant, bar, room service) inside a hotel.
// BillSeq is advanced inside the mark-billed transaction and is never set by clients.
type Outlet struct {
	Model
	HotelID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"hotel_id" binding:"required"`
	TaxGroupID *uuid.UUID `gorm:"type:uuid;index" json:"tax_group_id,omitempty"`
	Name       string     `gorm:"size:150;not null" json:"name" binding:"required,max=150"`
	Code       string     `gorm:"size:20;uniqueIndex" json:"code" binding:"required,max=20"`
	BillPrefix string     `gorm:"size:10" json:"bill_prefix" binding:"max=10"`
	BillSeq    int64      `gorm:"not null;default:0" json:"bill_seq"`
	Address    string     `gorm:"type:text" json:"address"`
	Phone      string     `gorm:"size:30" json:"phone"`
	GSTIN      string     `gorm:"size:20" json:"gstin"`
	FooterNote string     `gorm:"size:255" json:"footer_note"`
	IsActive   bool       `gorm:"not null" json:"is_active"`
}

func (Outlet) TableName() string { return "outlets" }

func (o *Outlet) SetDefaults() { o.IsActive = true }

// Department is a section of an outlet (AC hall, garden, bar). A department
// tax group overrides the outlet tax group.
type Department struct {
	Model
	OutletID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"outlet_id" binding:"required"`
	TaxGroupID *uuid.UUID `gorm:"type:uuid;index" json:"tax_group_id,omitempty"`
	Name       string     `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	IsActive   bool       `gorm:"not null" json:"is_active"`
}

func (Department) TableName() string { return "departments" }

func (d *Department) SetDefaults() { d.IsActive = true }
