package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
)

// BillFilter narrows a bill listing
type BillFilter struct {
	Params   *pagination.PaginationParams
	OutletID *uuid.UUID
	TableID  *uuid.UUID
	Status   *enum.BillStatus
	From     *time.Time
	To       *time.Time
	Search   string
}

// BillRepository defines the interface for bill, KOT and reverse KOT data operations
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	GetActiveByTable(ctx context.Context, tableID uuid.UUID) (*entity.Bill, error)
	CountActiveByTable(ctx context.Context, tableID uuid.UUID, excludeBillID uuid.UUID) (int64, error)
	// UpdateWithVersion writes the header when bill.Version still matches the
	// stored row and bumps the version. Returns ErrVersionConflict otherwise.
	UpdateWithVersion(ctx context.Context, bill *entity.Bill) error
	List(ctx context.Context, filter BillFilter) ([]entity.Bill, int64, error)

	CreateKOT(ctx context.Context, kot *entity.KOT) error
	GetKOT(ctx context.Context, billID uuid.UUID, kotNo int) (*entity.KOT, error)
	MarkKOTPrinted(ctx context.Context, kotID uuid.UUID, printErr string) error
	GetDetails(ctx context.Context, billID uuid.UUID) ([]entity.BillDetail, error)
	// IncrementRevQty raises rev_qty by qty only while the line still has that much left
	IncrementRevQty(ctx context.Context, detailID uuid.UUID, qty int) (bool, error)
	CreateReversals(ctx context.Context, rows []entity.ReverseKOT) error
	GetReversals(ctx context.Context, billID uuid.UUID, revKOTNo int) ([]entity.ReverseKOT, error)

	// NextBillNumber advances the outlet bill sequence and returns the formatted number
	NextBillNumber(ctx context.Context, outletID uuid.UUID) (string, error)
}

// TableRepository covers the workflow side of dining tables
type TableRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DiningTable, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) error
}
