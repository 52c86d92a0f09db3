package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model carries the identity and audit columns shared by master-data records
type Model struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new record
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// GetID returns the record identifier
func (m *Model) GetID() uuid.UUID {
	return m.ID
}

// SetID overrides the record identifier
func (m *Model) SetID(id uuid.UUID) {
	m.ID = id
}

// Record is implemented by every master-data entity served by the generic CRUD endpoints
type Record interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	TableName() string
}

// Defaulter is implemented by records that need non-zero defaults before a
// create request body is bound onto them
type Defaulter interface {
	SetDefaults()
}
