package entity

import "github.com/google/uuid"

// KitchenMainGroup is the top of the kitchen hierarchy (Food, Beverages, Liquor)
type KitchenMainGroup struct {
	Model
	Name        string `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

func (KitchenMainGroup) TableName() string { return "kitchen_main_groups" }

func (g *KitchenMainGroup) SetDefaults() { g.IsActive = true }

// KitchenCategory routes KOT lines to a kitchen section and its printer
type KitchenCategory struct {
	Model
	MainGroupID *uuid.UUID `gorm:"type:uuid;index" json:"main_group_id,omitempty"`
	Name        string     `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Description string     `gorm:"type:text" json:"description"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
}

func (KitchenCategory) TableName() string { return "kitchen_categories" }

func (c *KitchenCategory) SetDefaults() { c.IsActive = true }

// KitchenSubCategory refines a kitchen category
type KitchenSubCategory struct {
	Model
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
}

func (KitchenSubCategory) TableName() string { return "kitchen_sub_categories" }

func (c *KitchenSubCategory) SetDefaults() { c.IsActive = true }
