package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"gorm.io/gorm"
)

type masterRepository[T any] struct {
	db *gorm.DB
}

// NewMasterRepository creates the gorm repository for one master-data entity
func NewMasterRepository[T any](db *gorm.DB) domainRepo.MasterRepository[T] {
	return &masterRepository[T]{db: db}
}

func (r *masterRepository[T]) Create(ctx context.Context, record *T) error {
	return conn(ctx, r.db).Create(record).Error
}

func (r *masterRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	err := conn(ctx, r.db).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *masterRepository[T]) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	var records []T
	if len(ids) == 0 {
		return records, nil
	}
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&records).Error
	return records, err
}

func (r *masterRepository[T]) Update(ctx context.Context, record *T) error {
	return conn(ctx, r.db).Save(record).Error
}

func (r *masterRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var record T
	return conn(ctx, r.db).Delete(&record, "id = ?", id).Error
}

func (r *masterRepository[T]) List(ctx context.Context, filter domainRepo.MasterFilter) ([]T, int64, error) {
	var records []T
	var total int64
	var model T

	query := conn(ctx, r.db).Model(&model)
	if filter.OutletScoped {
		query = query.Scopes(OutletScope(ctx))
	}
	for column, value := range filter.Filters {
		query = query.Where(column+" = ?", value)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Params != nil {
		filter.Params.Validate()
		query = query.Offset(filter.Params.Offset()).Limit(filter.Params.PerPage)
	}
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "name ASC"
	}
	err := query.Order(orderBy).Find(&records).Error
	return records, total, err
}

type referenceChecker struct {
	db *gorm.DB
}

// NewReferenceChecker creates a checker for parent rows of master data
func NewReferenceChecker(db *gorm.DB) domainRepo.ReferenceChecker {
	return &referenceChecker{db: db}
}

func (r *referenceChecker) Exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Table(table).
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}
