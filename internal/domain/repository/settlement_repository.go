package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SettlementFilter narrows settlement listings and summaries
type SettlementFilter struct {
	Params      *pagination.PaginationParams
	OutletID    *uuid.UUID
	UserID      *uuid.UUID
	PaymentMode string
	From        *time.Time
	To          *time.Time
}

// PaymentModeTotal is the aggregate of live settlements for one tender
type PaymentModeTotal struct {
	PaymentMode string          `json:"payment_mode"`
	Count       int             `json:"count"`
	Amount      decimal.Decimal `json:"amount"`
}

// SettlementRepository defines the interface for settlement data operations
type SettlementRepository interface {
	CreateBatch(ctx context.Context, rows []entity.Settlement) error
	ListByBill(ctx context.Context, billID uuid.UUID, includeSuperseded bool) ([]entity.Settlement, error)
	Supersede(ctx context.Context, billID uuid.UUID, at time.Time) (int64, error)
	List(ctx context.Context, filter SettlementFilter) ([]entity.Settlement, int64, error)
	SummaryByMode(ctx context.Context, filter SettlementFilter) ([]PaymentModeTotal, error)
	CreateLogs(ctx context.Context, logs []entity.SettlementLog) error
	ListLogs(ctx context.Context, billID *uuid.UUID, params *pagination.PaginationParams) ([]entity.SettlementLog, int64, error)
}
