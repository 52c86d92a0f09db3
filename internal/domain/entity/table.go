package entity

import (
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
)

// DiningTable is a physical seating unit. Status is driven by the billing
// workflow; CRUD requests cannot move it.
type DiningTable struct {
	Model
	OutletID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"outlet_id" binding:"required"`
	DepartmentID *uuid.UUID       `gorm:"type:uuid;index" json:"department_id,omitempty"`
	Name         string           `gorm:"size:50;not null" json:"name" binding:"required,max=50"`
	Capacity     int              `gorm:"not null;default:0" json:"capacity" binding:"gte=0"`
	Status       enum.TableStatus `gorm:"not null;default:0" json:"status"`
	IsActive     bool             `gorm:"not null" json:"is_active"`
}

func (DiningTable) TableName() string { return "dining_tables" }

func (t *DiningTable) SetDefaults() { t.IsActive = true }
