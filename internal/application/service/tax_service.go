package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
)

// Tax rate sources
const (
	TaxSourceDepartment = "department"
	TaxSourceOutlet     = "outlet"
	TaxSourceNone       = "none"
)

// ResolvedTax is the rate set applying to an outlet/department pair
type ResolvedTax struct {
	Rates      entity.TaxRates `json:"rates"`
	Total      string          `json:"total"`
	Source     string          `json:"source"`
	TaxGroupID *uuid.UUID      `json:"tax_group_id,omitempty"`
	TaxGroup   string          `json:"tax_group,omitempty"`
}

// TaxService resolves GST rates for billing
type TaxService struct {
	outletRepo     repository.MasterRepository[entity.Outlet]
	departmentRepo repository.MasterRepository[entity.Department]
	taxGroupRepo   repository.MasterRepository[entity.TaxGroup]
}

// NewTaxService creates a new tax service
func NewTaxService(
	outletRepo repository.MasterRepository[entity.Outlet],
	departmentRepo repository.MasterRepository[entity.Department],
	taxGroupRepo repository.MasterRepository[entity.TaxGroup],
) *TaxService {
	return &TaxService{
		outletRepo:     outletRepo,
		departmentRepo: departmentRepo,
		taxGroupRepo:   taxGroupRepo,
	}
}

// ResolveRates looks up the department tax group, then the outlet tax group.
// Missing or inactive groups resolve to zero rates.
func (s *TaxService) ResolveRates(ctx context.Context, outletID uuid.UUID, departmentID *uuid.UUID) (*ResolvedTax, error) {
	outlet, err := s.outletRepo.GetByID(ctx, outletID)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, apperror.NewNotFoundError("Outlet")
	}

	if departmentID != nil {
		department, err := s.departmentRepo.GetByID(ctx, *departmentID)
		if err != nil {
			return nil, err
		}
		// A department removed after the bill was opened falls back to the outlet
		if department != nil && department.OutletID == outletID && department.TaxGroupID != nil {
			group, err := s.activeGroup(ctx, *department.TaxGroupID)
			if err != nil {
				return nil, err
			}
			if group != nil {
				return resolved(group, TaxSourceDepartment), nil
			}
		}
	}

	if outlet.TaxGroupID != nil {
		group, err := s.activeGroup(ctx, *outlet.TaxGroupID)
		if err != nil {
			return nil, err
		}
		if group != nil {
			return resolved(group, TaxSourceOutlet), nil
		}
	}

	return &ResolvedTax{Total: "0", Source: TaxSourceNone}, nil
}

// CheckDepartment verifies that departmentID is an active department of the outlet
func (s *TaxService) CheckDepartment(ctx context.Context, outletID, departmentID uuid.UUID) error {
	department, err := s.departmentRepo.GetByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if department == nil || department.OutletID != outletID || !department.IsActive {
		return apperror.NewFieldError("department_id", "Department not found in this outlet")
	}
	return nil
}

func (s *TaxService) activeGroup(ctx context.Context, id uuid.UUID) (*entity.TaxGroup, error) {
	group, err := s.taxGroupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil || !group.IsActive {
		return nil, nil
	}
	return group, nil
}

func resolved(group *entity.TaxGroup, source string) *ResolvedTax {
	rates := group.Rates()
	id := group.ID
	return &ResolvedTax{
		Rates:      rates,
		Total:      rates.Total().String(),
		Source:     source,
		TaxGroupID: &id,
		TaxGroup:   group.Name,
	}
}
