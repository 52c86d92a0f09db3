package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
)

// MasterFilter narrows a master-data listing
type MasterFilter struct {
	Params  *pagination.PaginationParams
	Search  string
	Filters map[string]interface{}
	// OutletScoped restricts the listing to the caller's outlet
	OutletScoped bool
	OrderBy      string
}

// MasterRepository is the CRUD contract shared by all master-data entities.
// T is the entity struct, e.g. entity.Outlet.
type MasterRepository[T any] interface {
	Create(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error)
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter MasterFilter) ([]T, int64, error)
}

// ReferenceChecker verifies that a referenced row exists
type ReferenceChecker interface {
	Exists(ctx context.Context, table string, id uuid.UUID) (bool, error)
}
