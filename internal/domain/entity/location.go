package entity

import "github.com/google/uuid"

// Country is a top-level geography record
type Country struct {
	Model
	Name     string `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Code     string `gorm:"size:10" json:"code" binding:"max=10"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

func (Country) TableName() string { return "countries" }

func (c *Country) SetDefaults() { c.IsActive = true }

// State belongs to a country
type State struct {
	Model
	CountryID uuid.UUID `gorm:"type:uuid;not null;index" json:"country_id" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Code      string    `gorm:"size:10" json:"code" binding:"max=10"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
}

func (State) TableName() string { return "states" }

func (s *State) SetDefaults() { s.IsActive = true }

// City belongs to a state
type City struct {
	Model
	StateID  uuid.UUID `gorm:"type:uuid;not null;index" json:"state_id" binding:"required"`
	Name     string    `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	IsActive bool      `gorm:"not null" json:"is_active"`
}

func (City) TableName() string { return "cities" }

func (c *City) SetDefaults() { c.IsActive = true }
