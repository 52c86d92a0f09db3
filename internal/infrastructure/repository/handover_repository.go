package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type handoverRepository struct {
	db *gorm.DB
}

// NewHandoverRepository creates a new handover repository
func NewHandoverRepository(db *gorm.DB) domainRepo.HandoverRepository {
	return &handoverRepository{db: db}
}

// settledBills selects the bills settled inside the scope
func (r *handoverRepository) settledBills(ctx context.Context, scope domainRepo.HandoverScope) *gorm.DB {
	query := conn(ctx, r.db).Model(&entity.Bill{}).
		Where("bills.outlet_id = ? AND bills.status = ?", scope.OutletID, enum.BillStatusSettled).
		Where("bills.settled_at >= ? AND bills.settled_at < ?", scope.From, scope.To)
	if scope.UserID != nil {
		query = query.Where("bills.settled_by = ?", *scope.UserID)
	}
	return query
}

func (r *handoverRepository) AggregateBills(ctx context.Context, scope domainRepo.HandoverScope) (*domainRepo.BillAggregate, error) {
	var row struct {
		BillCount      int
		NCCount        int `gorm:"column:nc_count"`
		GrossAmount    decimal.Decimal
		DiscountAmount decimal.Decimal
		TaxAmount      decimal.Decimal
		RoundOff       decimal.Decimal
		NetAmount      decimal.Decimal
	}
	err := r.settledBills(ctx, scope).
		Select(`COUNT(*) AS bill_count,
			COALESCE(SUM(CASE WHEN bills.is_nc THEN 1 ELSE 0 END), 0) AS nc_count,
			COALESCE(SUM(bills.gross_amount), 0) AS gross_amount,
			COALESCE(SUM(bills.discount_amount), 0) AS discount_amount,
			COALESCE(SUM(bills.cgst_amount + bills.sgst_amount + bills.igst_amount + bills.cess_amount), 0) AS tax_amount,
			COALESCE(SUM(bills.round_off), 0) AS round_off,
			COALESCE(SUM(bills.net_amount), 0) AS net_amount`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domainRepo.BillAggregate{
		BillCount:      row.BillCount,
		NCCount:        row.NCCount,
		GrossAmount:    row.GrossAmount.Round(2),
		DiscountAmount: row.DiscountAmount.Round(2),
		TaxAmount:      row.TaxAmount.Round(2),
		RoundOff:       row.RoundOff.Round(2),
		NetAmount:      row.NetAmount.Round(2),
	}, nil
}

func (r *handoverRepository) CountItems(ctx context.Context, scope domainRepo.HandoverScope) (int, error) {
	var count int
	err := r.settledBills(ctx, scope).
		Joins("JOIN bill_details ON bill_details.bill_id = bills.id").
		Select("COALESCE(SUM(bill_details.qty - bill_details.rev_qty), 0)").
		Scan(&count).Error
	return count, err
}

func (r *handoverRepository) CountReversed(ctx context.Context, scope domainRepo.HandoverScope) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&entity.Bill{}).
		Where("outlet_id = ? AND status = ?", scope.OutletID, enum.BillStatusReversed).
		Where("reversed_at >= ? AND reversed_at < ?", scope.From, scope.To)
	if scope.UserID != nil {
		query = query.Where("reversed_by = ?", *scope.UserID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *handoverRepository) PaymentTotals(ctx context.Context, scope domainRepo.HandoverScope) ([]domainRepo.PaymentModeTotal, error) {
	var totals []domainRepo.PaymentModeTotal
	err := r.settledBills(ctx, scope).
		Joins("JOIN settlements ON settlements.bill_id = bills.id AND settlements.superseded = ?", false).
		Select("settlements.payment_mode AS payment_mode, COUNT(*) AS count, COALESCE(SUM(settlements.amount), 0) AS amount").
		Group("settlements.payment_mode").
		Order("settlements.payment_mode ASC").
		Scan(&totals).Error
	for i := range totals {
		totals[i].Amount = totals[i].Amount.Round(2)
	}
	return totals, err
}

func (r *handoverRepository) Create(ctx context.Context, handover *entity.Handover) error {
	return conn(ctx, r.db).Create(handover).Error
}

func (r *handoverRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Handover, error) {
	var handover entity.Handover
	err := conn(ctx, r.db).
		Preload("Payments").
		Preload("Denominations").
		First(&handover, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &handover, nil
}

func (r *handoverRepository) Latest(ctx context.Context, outletID uuid.UUID, handedBy *uuid.UUID) (*entity.Handover, error) {
	var handover entity.Handover
	query := conn(ctx, r.db).Where("outlet_id = ?", outletID)
	if handedBy != nil {
		query = query.Where("handed_by = ?", *handedBy)
	}
	err := query.Order("period_end DESC").First(&handover).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &handover, nil
}

func (r *handoverRepository) List(ctx context.Context, outletID *uuid.UUID, params *pagination.PaginationParams) ([]entity.Handover, int64, error) {
	var handovers []entity.Handover
	var total int64

	query := conn(ctx, r.db).Model(&entity.Handover{}).Scopes(OutletScope(ctx))
	if outletID != nil {
		query = query.Where("outlet_id = ?", *outletID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params != nil {
		params.Validate()
		query = query.Offset(params.Offset()).Limit(params.PerPage)
	}
	err := query.Preload("Payments").Order("created_at DESC").Find(&handovers).Error
	return handovers, total, err
}
