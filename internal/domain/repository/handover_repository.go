package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/shopspring/decimal"
)

// HandoverScope selects the bills a handover covers
type HandoverScope struct {
	OutletID uuid.UUID
	UserID   *uuid.UUID
	From     time.Time
	To       time.Time
}

// BillAggregate sums the bills settled in a handover scope
type BillAggregate struct {
	BillCount      int
	NCCount        int
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	RoundOff       decimal.Decimal
	NetAmount      decimal.Decimal
}

// HandoverRepository defines the interface for handover data operations
type HandoverRepository interface {
	AggregateBills(ctx context.Context, scope HandoverScope) (*BillAggregate, error)
	CountItems(ctx context.Context, scope HandoverScope) (int, error)
	CountReversed(ctx context.Context, scope HandoverScope) (int64, error)
	PaymentTotals(ctx context.Context, scope HandoverScope) ([]PaymentModeTotal, error)

	Create(ctx context.Context, handover *entity.Handover) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Handover, error)
	// Latest returns the most recent handover of an outlet, optionally by one user
	Latest(ctx context.Context, outletID uuid.UUID, handedBy *uuid.UUID) (*entity.Handover, error)
	List(ctx context.Context, outletID *uuid.UUID, params *pagination.PaginationParams) ([]entity.Handover, int64, error)
}
