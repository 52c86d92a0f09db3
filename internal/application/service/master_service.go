package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
)

// Reference is a parent row a master record points to
type Reference struct {
	Field string
	Table string
	ID    *uuid.UUID
}

// MasterRules customizes the generic CRUD for one entity
type MasterRules[T any] struct {
	// Resource is the human name used in error messages
	Resource string
	// Filters are the query keys a listing may filter on
	Filters []string
	OrderBy string
	// OutletOf returns the owning outlet. When set, listings are outlet
	// scoped and single-record access is checked against the caller.
	OutletOf func(record *T) *uuid.UUID
	Parents  func(record *T) []Reference
	// Validate runs before create (existing is nil) and update
	Validate     func(ctx context.Context, record, existing *T) error
	BeforeDelete func(ctx context.Context, record *T) error
}

// MasterQuery is a listing request. Filter values arrive as raw strings.
type MasterQuery struct {
	Params  *pagination.PaginationParams
	Search  string
	Filters map[string]string
}

// MasterService is the CRUD service shared by every master-data entity
type MasterService[T any, PT interface {
	*T
	entity.Record
}] struct {
	repo  repository.MasterRepository[T]
	refs  repository.ReferenceChecker
	rules MasterRules[T]
}

// NewMasterService creates a master-data service for T
func NewMasterService[T any, PT interface {
	*T
	entity.Record
}](repo repository.MasterRepository[T], refs repository.ReferenceChecker, rules MasterRules[T]) *MasterService[T, PT] {
	if rules.Resource == "" {
		var zero T
		rules.Resource = PT(&zero).TableName()
	}
	return &MasterService[T, PT]{repo: repo, refs: refs, rules: rules}
}

// Resource returns the entity name used in messages
func (s *MasterService[T, PT]) Resource() string {
	return s.rules.Resource
}

// New returns a zero record with its create defaults applied
func (s *MasterService[T, PT]) New() *T {
	record := new(T)
	if d, ok := any(record).(entity.Defaulter); ok {
		d.SetDefaults()
	}
	return record
}

// List returns a page of records
func (s *MasterService[T, PT]) List(ctx context.Context, query MasterQuery) (*pagination.PaginatedResult[T], error) {
	if query.Params == nil {
		query.Params = pagination.DefaultPagination()
	}
	query.Params.Validate()

	filters, err := s.parseFilters(query.Filters)
	if err != nil {
		return nil, err
	}

	records, total, err := s.repo.List(ctx, repository.MasterFilter{
		Params:       query.Params,
		Search:       strings.TrimSpace(query.Search),
		Filters:      filters,
		OutletScoped: s.rules.OutletOf != nil,
		OrderBy:      s.rules.OrderBy,
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(records, pagination.NewPagination(query.Params.Page, query.Params.PerPage, total)), nil
}

// parseFilters keeps the allowed keys. *_id values must be UUIDs and
// is_* / enabled values booleans.
func (s *MasterService[T, PT]) parseFilters(raw map[string]string) (map[string]interface{}, error) {
	filters := make(map[string]interface{})
	for _, key := range s.rules.Filters {
		value, ok := raw[key]
		if !ok || value == "" {
			continue
		}
		switch {
		case strings.HasSuffix(key, "_id"):
			id, err := uuid.Parse(value)
			if err != nil {
				return nil, apperror.NewFieldError(key, "Invalid ID")
			}
			filters[key] = id
		case strings.HasPrefix(key, "is_") || key == "enabled":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, apperror.NewFieldError(key, "Must be true or false")
			}
			filters[key] = b
		default:
			filters[key] = value
		}
	}
	return filters, nil
}

// Get returns one record
func (s *MasterService[T, PT]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil || !s.canAccess(ctx, record) {
		return nil, apperror.NewNotFoundError(s.rules.Resource)
	}
	return record, nil
}

// Create validates and stores a new record
func (s *MasterService[T, PT]) Create(ctx context.Context, record *T) (*T, error) {
	PT(record).SetID(uuid.Nil)
	if err := s.check(ctx, record, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	return record, nil
}

// Update loads the record, lets apply overwrite its fields and stores it.
// The ID and the fields guarded by Validate survive apply.
func (s *MasterService[T, PT]) Update(ctx context.Context, id uuid.UUID, apply func(record *T) error) (*T, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing := *record
	if err := apply(record); err != nil {
		return nil, err
	}
	PT(record).SetID(id)

	if err := s.check(ctx, record, &existing); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, s.translate(err)
	}
	return record, nil
}

// Delete soft-deletes a record
func (s *MasterService[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.rules.BeforeDelete != nil {
		if err := s.rules.BeforeDelete(ctx, record); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *MasterService[T, PT]) check(ctx context.Context, record, existing *T) error {
	if !s.canAccess(ctx, record) {
		return apperror.NewForbiddenError("You cannot manage records of another outlet")
	}
	if s.rules.Validate != nil {
		if err := s.rules.Validate(ctx, record, existing); err != nil {
			return err
		}
	}
	if s.rules.Parents == nil {
		return nil
	}
	for _, ref := range s.rules.Parents(record) {
		if ref.ID == nil {
			continue
		}
		ok, err := s.refs.Exists(ctx, ref.Table, *ref.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewFieldError(ref.Field, "Referenced record does not exist")
		}
	}
	return nil
}

func (s *MasterService[T, PT]) canAccess(ctx context.Context, record *T) bool {
	if s.rules.OutletOf == nil {
		return true
	}
	outletID := s.rules.OutletOf(record)
	if outletID == nil {
		return true
	}
	return infraRepo.CanAccessOutlet(ctx, *outletID)
}

func (s *MasterService[T, PT]) translate(err error) error {
	if infraRepo.IsDuplicateKey(err) {
		return apperror.NewConflictError(s.rules.Resource + " already exists")
	}
	return err
}
