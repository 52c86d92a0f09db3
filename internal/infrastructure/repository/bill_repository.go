package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(bill).Error
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).
		Preload("Table").
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("kot_no ASC, created_at ASC")
		}).
		Preload("KOTs", func(db *gorm.DB) *gorm.DB {
			return db.Order("kot_no ASC")
		}).
		Preload("Reversals", func(db *gorm.DB) *gorm.DB {
			return db.Order("rev_kot_no ASC")
		}).
		Preload("Settlements", "superseded = ?", false).
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) GetActiveByTable(ctx context.Context, tableID uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).
		Where("table_id = ? AND status IN ?", tableID, activeStatuses()).
		Order("created_at DESC").
		First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) CountActiveByTable(ctx context.Context, tableID uuid.UUID, excludeBillID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Bill{}).
		Where("table_id = ? AND status IN ? AND id <> ?", tableID, activeStatuses(), excludeBillID).
		Count(&count).Error
	return count, err
}

func (r *billRepository) UpdateWithVersion(ctx context.Context, bill *entity.Bill) error {
	next := *bill
	next.Version = bill.Version + 1
	next.Table = nil
	next.Details = nil
	next.KOTs = nil
	next.Reversals = nil
	next.Settlements = nil

	res := conn(ctx, r.db).Model(&next).
		Where("version = ?", bill.Version).
		Select("*").
		Omit(clause.Associations, "id", "outlet_id", "created_by", "created_at", "deleted_at").
		Updates(&next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrVersionConflict
	}
	bill.Version = next.Version
	bill.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *billRepository) List(ctx context.Context, filter domainRepo.BillFilter) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{}).Scopes(OutletScope(ctx))
	if filter.OutletID != nil {
		query = query.Where("outlet_id = ?", *filter.OutletID)
	}
	if filter.TableID != nil {
		query = query.Where("table_id = ?", *filter.TableID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(bill_no) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_mobile LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Params != nil {
		filter.Params.Validate()
		query = query.Offset(filter.Params.Offset()).Limit(filter.Params.PerPage)
	}
	err := query.Preload("Table").Order("created_at DESC").Find(&bills).Error
	return bills, total, err
}

func (r *billRepository) CreateKOT(ctx context.Context, kot *entity.KOT) error {
	return conn(ctx, r.db).Create(kot).Error
}

func (r *billRepository) GetKOT(ctx context.Context, billID uuid.UUID, kotNo int) (*entity.KOT, error) {
	var kot entity.KOT
	err := conn(ctx, r.db).
		Preload("Details").
		First(&kot, "bill_id = ? AND kot_no = ?", billID, kotNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kot, nil
}

func (r *billRepository) MarkKOTPrinted(ctx context.Context, kotID uuid.UUID, printErr string) error {
	return conn(ctx, r.db).Model(&entity.KOT{}).
		Where("id = ?", kotID).
		Updates(map[string]interface{}{
			"printed":     printErr == "",
			"print_error": printErr,
		}).Error
}

func (r *billRepository) GetDetails(ctx context.Context, billID uuid.UUID) ([]entity.BillDetail, error) {
	var details []entity.BillDetail
	err := conn(ctx, r.db).
		Where("bill_id = ?", billID).
		Order("kot_no ASC, created_at ASC").
		Find(&details).Error
	return details, err
}

func (r *billRepository) IncrementRevQty(ctx context.Context, detailID uuid.UUID, qty int) (bool, error) {
	res := conn(ctx, r.db).Model(&entity.BillDetail{}).
		Where("id = ? AND qty - rev_qty >= ?", detailID, qty).
		UpdateColumn("rev_qty", gorm.Expr("rev_qty + ?", qty))
	return res.RowsAffected == 1, res.Error
}

func (r *billRepository) CreateReversals(ctx context.Context, rows []entity.ReverseKOT) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&rows).Error
}

func (r *billRepository) GetReversals(ctx context.Context, billID uuid.UUID, revKOTNo int) ([]entity.ReverseKOT, error) {
	var rows []entity.ReverseKOT
	err := conn(ctx, r.db).
		Where("bill_id = ? AND rev_kot_no = ?", billID, revKOTNo).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *billRepository) NextBillNumber(ctx context.Context, outletID uuid.UUID) (string, error) {
	db := conn(ctx, r.db)
	res := db.Model(&entity.Outlet{}).
		Where("id = ?", outletID).
		UpdateColumn("bill_seq", gorm.Expr("bill_seq + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", gorm.ErrRecordNotFound
	}

	var outlet entity.Outlet
	if err := db.Select("id", "code", "bill_prefix", "bill_seq").First(&outlet, "id = ?", outletID).Error; err != nil {
		return "", err
	}
	prefix := outlet.BillPrefix
	if prefix == "" {
		prefix = outlet.Code
	}
	return fmt.Sprintf("%s-%d", prefix, outlet.BillSeq), nil
}

func activeStatuses() []enum.BillStatus {
	return []enum.BillStatus{enum.BillStatusOpen, enum.BillStatusBilled}
}

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new dining table repository
func NewTableRepository(db *gorm.DB) domainRepo.TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DiningTable, error) {
	var table entity.DiningTable
	err := conn(ctx, r.db).First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) SetStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) error {
	return conn(ctx, r.db).Model(&entity.DiningTable{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
