package entity

import (
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
)

// PrinterSetting binds a physical printer to an outlet, optionally narrowed
// to a department and/or kitchen category
type PrinterSetting struct {
	Model
	OutletID          uuid.UUID              `gorm:"type:uuid;not null;index" json:"outlet_id" binding:"required"`
	DepartmentID      *uuid.UUID             `gorm:"type:uuid;index" json:"department_id,omitempty"`
	KitchenCategoryID *uuid.UUID             `gorm:"type:uuid;index" json:"kitchen_category_id,omitempty"`
	Name              string                 `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Purpose           enum.PrinterPurpose    `gorm:"size:10;not null" json:"purpose" binding:"required,oneof=KOT BILL"`
	Connection        enum.PrinterConnection `gorm:"size:10;not null" json:"connection" binding:"required,oneof=network usb none"`
	Address           string                 `gorm:"size:100" json:"address"`
	USBPath           string                 `gorm:"size:100" json:"usb_path"`
	PaperWidth        int                    `gorm:"not null;default:32" json:"paper_width" binding:"omitempty,oneof=32 42 48"`
	Copies            int                    `gorm:"not null;default:1" json:"copies" binding:"gte=0,lte=5"`
	Enabled           bool                   `gorm:"not null" json:"enabled"`
}

func (PrinterSetting) TableName() string { return "printer_settings" }

func (p *PrinterSetting) SetDefaults() {
	p.Enabled = true
	p.PaperWidth = 32
	p.Copies = 1
}

// Specificity ranks how narrowly the setting is scoped. Higher wins.
func (p *PrinterSetting) Specificity() int {
	score := 0
	if p.KitchenCategoryID != nil {
		score += 2
	}
	if p.DepartmentID != nil {
		score++
	}
	return score
}
