package entity

import "github.com/google/uuid"

// Customer is a guest profile used for pickup and delivery orders
type Customer struct {
	Model
	Name    string     `gorm:"size:150;not null" json:"name" binding:"required,max=150"`
	Mobile  string     `gorm:"size:20;index" json:"mobile" binding:"max=20"`
	Email   string     `gorm:"size:150" json:"email" binding:"omitempty,email"`
	Address string     `gorm:"type:text" json:"address"`
	CityID  *uuid.UUID `gorm:"type:uuid" json:"city_id,omitempty"`
}

func (Customer) TableName() string { return "customers" }
