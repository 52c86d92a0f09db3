package request

import "github.com/google/uuid"

// CreateUserRequest represents a staff account creation request
type CreateUserRequest struct {
	Username      string     `json:"username" binding:"required,min=3,max=100"`
	Email         *string    `json:"email" binding:"omitempty,email"`
	Password      string     `json:"password" binding:"required,min=6"`
	FullName      string     `json:"full_name" binding:"max=255"`
	Mobile        string     `json:"mobile" binding:"max=20"`
	HotelID       *uuid.UUID `json:"hotel_id"`
	OutletID      *uuid.UUID `json:"outlet_id"`
	DesignationID *uuid.UUID `json:"designation_id"`
	UserTypeID    *uuid.UUID `json:"user_type_id"`
	IsActive      *bool      `json:"is_active"`
	Roles         []string   `json:"roles"`
}

// UpdateUserRequest changes only the fields it carries. Roles replaces the
// role set when present.
type UpdateUserRequest struct {
	Username      string     `json:"username" binding:"omitempty,min=3,max=100"`
	Email         *string    `json:"email" binding:"omitempty,email"`
	Password      string     `json:"password" binding:"omitempty,min=6"`
	FullName      string     `json:"full_name" binding:"max=255"`
	Mobile        string     `json:"mobile" binding:"max=20"`
	HotelID       *uuid.UUID `json:"hotel_id"`
	OutletID      *uuid.UUID `json:"outlet_id"`
	DesignationID *uuid.UUID `json:"designation_id"`
	UserTypeID    *uuid.UUID `json:"user_type_id"`
	IsActive      *bool      `json:"is_active"`
	Roles         []string   `json:"roles"`
}
