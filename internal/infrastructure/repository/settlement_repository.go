package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"gorm.io/gorm"
)

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *gorm.DB) domainRepo.SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) CreateBatch(ctx context.Context, rows []entity.Settlement) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(ctx, r.db).Omit("Bill").Create(&rows).Error
}

func (r *settlementRepository) ListByBill(ctx context.Context, billID uuid.UUID, includeSuperseded bool) ([]entity.Settlement, error) {
	var rows []entity.Settlement
	query := conn(ctx, r.db).Where("bill_id = ?", billID)
	if !includeSuperseded {
		query = query.Where("superseded = ?", false)
	}
	err := query.Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *settlementRepository) Supersede(ctx context.Context, billID uuid.UUID, at time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&entity.Settlement{}).
		Where("bill_id = ? AND superseded = ?", billID, false).
		Updates(map[string]interface{}{
			"superseded":    true,
			"superseded_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *settlementRepository) filtered(ctx context.Context, filter domainRepo.SettlementFilter) *gorm.DB {
	query := conn(ctx, r.db).Model(&entity.Settlement{}).
		Scopes(OutletScope(ctx)).
		Where("superseded = ?", false)
	if filter.OutletID != nil {
		query = query.Where("outlet_id = ?", *filter.OutletID)
	}
	if filter.UserID != nil {
		query = query.Where("created_by = ?", *filter.UserID)
	}
	if filter.PaymentMode != "" {
		query = query.Where("payment_mode = ?", filter.PaymentMode)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

func (r *settlementRepository) List(ctx context.Context, filter domainRepo.SettlementFilter) ([]entity.Settlement, int64, error) {
	var rows []entity.Settlement
	var total int64

	query := r.filtered(ctx, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Params != nil {
		filter.Params.Validate()
		query = query.Offset(filter.Params.Offset()).Limit(filter.Params.PerPage)
	}
	err := query.Preload("Bill").Order("created_at DESC").Find(&rows).Error
	return rows, total, err
}

func (r *settlementRepository) SummaryByMode(ctx context.Context, filter domainRepo.SettlementFilter) ([]domainRepo.PaymentModeTotal, error) {
	var totals []domainRepo.PaymentModeTotal
	err := r.filtered(ctx, filter).
		Select("payment_mode, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("payment_mode").
		Order("payment_mode ASC").
		Scan(&totals).Error
	for i := range totals {
		totals[i].Amount = totals[i].Amount.Round(2)
	}
	return totals, err
}

func (r *settlementRepository) CreateLogs(ctx context.Context, logs []entity.SettlementLog) error {
	if len(logs) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&logs).Error
}

func (r *settlementRepository) ListLogs(ctx context.Context, billID *uuid.UUID, params *pagination.PaginationParams) ([]entity.SettlementLog, int64, error) {
	var logs []entity.SettlementLog
	var total int64

	query := conn(ctx, r.db).Model(&entity.SettlementLog{}).
		Joins("JOIN bills ON bills.id = settlement_logs.bill_id").
		Scopes(OutletScopeOn(ctx, "bills.outlet_id"))
	if billID != nil {
		query = query.Where("settlement_logs.bill_id = ?", *billID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params != nil {
		params.Validate()
		query = query.Offset(params.Offset()).Limit(params.PerPage)
	}
	err := query.Order("settlement_logs.created_at DESC").Find(&logs).Error
	return logs, total, err
}
