package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/shopspring/decimal"
)

// MasterRepositories bundles the gorm repositories of every master entity
type MasterRepositories struct {
	Countries            repository.MasterRepository[entity.Country]
	States               repository.MasterRepository[entity.State]
	Cities               repository.MasterRepository[entity.City]
	Brands               repository.MasterRepository[entity.Brand]
	Hotels               repository.MasterRepository[entity.Hotel]
	Outlets              repository.MasterRepository[entity.Outlet]
	Departments          repository.MasterRepository[entity.Department]
	Tables               repository.MasterRepository[entity.DiningTable]
	TaxGroups            repository.MasterRepository[entity.TaxGroup]
	KitchenMainGroups    repository.MasterRepository[entity.KitchenMainGroup]
	KitchenCategories    repository.MasterRepository[entity.KitchenCategory]
	KitchenSubCategories repository.MasterRepository[entity.KitchenSubCategory]
	MenuItems            repository.MasterRepository[entity.MenuItem]
	Units                repository.MasterRepository[entity.Unit]
	Warehouses           repository.MasterRepository[entity.Warehouse]
	Designations         repository.MasterRepository[entity.Designation]
	UserTypes            repository.MasterRepository[entity.UserType]
	Customers            repository.MasterRepository[entity.Customer]
	PaymentModes         repository.MasterRepository[entity.PaymentMode]
	PrinterSettings      repository.MasterRepository[entity.PrinterSetting]
}

// MasterServices holds one CRUD service per master entity
type MasterServices struct {
	Countries            *MasterService[entity.Country, *entity.Country]
	States               *MasterService[entity.State, *entity.State]
	Cities               *MasterService[entity.City, *entity.City]
	Brands               *MasterService[entity.Brand, *entity.Brand]
	Hotels               *MasterService[entity.Hotel, *entity.Hotel]
	Outlets              *MasterService[entity.Outlet, *entity.Outlet]
	Departments          *MasterService[entity.Department, *entity.Department]
	Tables               *MasterService[entity.DiningTable, *entity.DiningTable]
	TaxGroups            *MasterService[entity.TaxGroup, *entity.TaxGroup]
	KitchenMainGroups    *MasterService[entity.KitchenMainGroup, *entity.KitchenMainGroup]
	KitchenCategories    *MasterService[entity.KitchenCategory, *entity.KitchenCategory]
	KitchenSubCategories *MasterService[entity.KitchenSubCategory, *entity.KitchenSubCategory]
	MenuItems            *MasterService[entity.MenuItem, *entity.MenuItem]
	Units                *MasterService[entity.Unit, *entity.Unit]
	Warehouses           *MasterService[entity.Warehouse, *entity.Warehouse]
	Designations         *MasterService[entity.Designation, *entity.Designation]
	UserTypes            *MasterService[entity.UserType, *entity.UserType]
	Customers            *MasterService[entity.Customer, *entity.Customer]
	PaymentModes         *MasterService[entity.PaymentMode, *entity.PaymentMode]
	PrinterSettings      *MasterService[entity.PrinterSetting, *entity.PrinterSetting]
}

var hundredPercent = decimal.NewFromInt(100)

// NewMasterServices wires the master-data services and their rules
func NewMasterServices(repos MasterRepositories, refs repository.ReferenceChecker, billRepo repository.BillRepository) *MasterServices {
	return &MasterServices{
		Countries: NewMasterService[entity.Country](repos.Countries, refs, MasterRules[entity.Country]{
			Resource: "Country",
			Filters:  []string{"is_active"},
		}),
		States: NewMasterService[entity.State](repos.States, refs, MasterRules[entity.State]{
			Resource: "State",
			Filters:  []string{"country_id", "is_active"},
			Parents: func(s *entity.State) []Reference {
				return []Reference{{Field: "country_id", Table: "countries", ID: &s.CountryID}}
			},
		}),
		Cities: NewMasterService[entity.City](repos.Cities, refs, MasterRules[entity.City]{
			Resource: "City",
			Filters:  []string{"state_id", "is_active"},
			Parents: func(c *entity.City) []Reference {
				return []Reference{{Field: "state_id", Table: "states", ID: &c.StateID}}
			},
		}),
		Brands: NewMasterService[entity.Brand](repos.Brands, refs, MasterRules[entity.Brand]{
			Resource: "Brand",
			Filters:  []string{"is_active"},
		}),
		Hotels: NewMasterService[entity.Hotel](repos.Hotels, refs, MasterRules[entity.Hotel]{
			Resource: "Hotel",
			Filters:  []string{"brand_id", "city_id", "is_active"},
			Parents: func(h *entity.Hotel) []Reference {
				return []Reference{
					{Field: "brand_id", Table: "brands", ID: &h.BrandID},
					{Field: "city_id", Table: "cities", ID: h.CityID},
				}
			},
		}),
		Outlets: NewMasterService[entity.Outlet](repos.Outlets, refs, MasterRules[entity.Outlet]{
			Resource: "Outlet",
			Filters:  []string{"hotel_id", "is_active"},
			Parents: func(o *entity.Outlet) []Reference {
				return []Reference{
					{Field: "hotel_id", Table: "hotels", ID: &o.HotelID},
					{Field: "tax_group_id", Table: "tax_groups", ID: o.TaxGroupID},
				}
			},
			Validate: validateOutlet,
		}),
		Departments: NewMasterService[entity.Department](repos.Departments, refs, MasterRules[entity.Department]{
			Resource: "Department",
			Filters:  []string{"outlet_id", "is_active"},
			OutletOf: func(d *entity.Department) *uuid.UUID { return &d.OutletID },
			Parents: func(d *entity.Department) []Reference {
				return []Reference{
					{Field: "outlet_id", Table: "outlets", ID: &d.OutletID},
					{Field: "tax_group_id", Table: "tax_groups", ID: d.TaxGroupID},
				}
			},
		}),
		Tables: NewMasterService[entity.DiningTable](repos.Tables, refs, MasterRules[entity.DiningTable]{
			Resource: "Table",
			Filters:  []string{"outlet_id", "department_id", "is_active"},
			OutletOf: func(t *entity.DiningTable) *uuid.UUID { return &t.OutletID },
			Parents: func(t *entity.DiningTable) []Reference {
				return []Reference{
					{Field: "outlet_id", Table: "outlets", ID: &t.OutletID},
					{Field: "department_id", Table: "departments", ID: t.DepartmentID},
				}
			},
			Validate:     validateTable,
			BeforeDelete: tableDeleteGuard(billRepo),
		}),
		TaxGroups: NewMasterService[entity.TaxGroup](repos.TaxGroups, refs, MasterRules[entity.TaxGroup]{
			Resource: "Tax group",
			Filters:  []string{"is_active"},
			Validate: validateTaxGroup,
		}),
		KitchenMainGroups: NewMasterService[entity.KitchenMainGroup](repos.KitchenMainGroups, refs, MasterRules[entity.KitchenMainGroup]{
			Resource: "Kitchen main group",
			Filters:  []string{"is_active"},
		}),
		KitchenCategories: NewMasterService[entity.KitchenCategory](repos.KitchenCategories, refs, MasterRules[entity.KitchenCategory]{
			Resource: "Kitchen category",
			Filters:  []string{"main_group_id", "is_active"},
			Parents: func(c *entity.KitchenCategory) []Reference {
				return []Reference{{Field: "main_group_id", Table: "kitchen_main_groups", ID: c.MainGroupID}}
			},
		}),
		KitchenSubCategories: NewMasterService[entity.KitchenSubCategory](repos.KitchenSubCategories, refs, MasterRules[entity.KitchenSubCategory]{
			Resource: "Kitchen sub-category",
			Filters:  []string{"category_id", "is_active"},
			Parents: func(c *entity.KitchenSubCategory) []Reference {
				return []Reference{{Field: "category_id", Table: "kitchen_categories", ID: &c.CategoryID}}
			},
		}),
		MenuItems: NewMasterService[entity.MenuItem](repos.MenuItems, refs, MasterRules[entity.MenuItem]{
			Resource: "Menu item",
			Filters:  []string{"outlet_id", "kitchen_category_id", "kitchen_sub_category_id", "code", "is_active"},
			OutletOf: func(m *entity.MenuItem) *uuid.UUID { return &m.OutletID },
			Parents: func(m *entity.MenuItem) []Reference {
				return []Reference{
					{Field: "outlet_id", Table: "outlets", ID: &m.OutletID},
					{Field: "kitchen_category_id", Table: "kitchen_categories", ID: m.KitchenCategoryID},
					{Field: "kitchen_sub_category_id", Table: "kitchen_sub_categories", ID: m.KitchenSubCategoryID},
					{Field: "unit_id", Table: "units", ID: m.UnitID},
				}
			},
			Validate: func(_ context.Context, m, _ *entity.MenuItem) error {
				if m.Rate.IsNegative() {
					return apperror.NewFieldError("rate", "Rate cannot be negative")
				}
				m.Rate = m.Rate.Round(2)
				return nil
			},
		}),
		Units: NewMasterService[entity.Unit](repos.Units, refs, MasterRules[entity.Unit]{
			Resource: "Unit",
			Filters:  []string{"is_active"},
		}),
		Warehouses: NewMasterService[entity.Warehouse](repos.Warehouses, refs, MasterRules[entity.Warehouse]{
			Resource: "Warehouse",
			Filters:  []string{"outlet_id", "is_active"},
			Parents: func(w *entity.Warehouse) []Reference {
				return []Reference{{Field: "outlet_id", Table: "outlets", ID: w.OutletID}}
			},
		}),
		Designations: NewMasterService[entity.Designation](repos.Designations, refs, MasterRules[entity.Designation]{
			Resource: "Designation",
			Filters:  []string{"is_active"},
		}),
		UserTypes: NewMasterService[entity.UserType](repos.UserTypes, refs, MasterRules[entity.UserType]{
			Resource: "User type",
			Filters:  []string{"is_active"},
		}),
		Customers: NewMasterService[entity.Customer](repos.Customers, refs, MasterRules[entity.Customer]{
			Resource: "Customer",
			Filters:  []string{"mobile", "city_id"},
			Parents: func(c *entity.Customer) []Reference {
				return []Reference{{Field: "city_id", Table: "cities", ID: c.CityID}}
			},
		}),
		PaymentModes: NewMasterService[entity.PaymentMode](repos.PaymentModes, refs, MasterRules[entity.PaymentMode]{
			Resource: "Payment mode",
			Filters:  []string{"is_cash", "is_active"},
			OrderBy:  "sort_order ASC, name ASC",
		}),
		PrinterSettings: NewMasterService[entity.PrinterSetting](repos.PrinterSettings, refs, MasterRules[entity.PrinterSetting]{
			Resource: "Printer",
			Filters:  []string{"outlet_id", "department_id", "kitchen_category_id", "purpose", "enabled"},
			OutletOf: func(p *entity.PrinterSetting) *uuid.UUID { return &p.OutletID },
			Parents: func(p *entity.PrinterSetting) []Reference {
				return []Reference{
					{Field: "outlet_id", Table: "outlets", ID: &p.OutletID},
					{Field: "department_id", Table: "departments", ID: p.DepartmentID},
					{Field: "kitchen_category_id", Table: "kitchen_categories", ID: p.KitchenCategoryID},
				}
			},
			Validate: validatePrinterSetting,
		}),
	}
}

func validateOutlet(_ context.Context, o, existing *entity.Outlet) error {
	// The bill sequence only moves inside mark-billed
	if existing != nil {
		o.BillSeq = existing.BillSeq
	} else {
		o.BillSeq = 0
	}
	return nil
}

func validateTable(_ context.Context, t, existing *entity.DiningTable) error {
	if existing != nil {
		t.Status = existing.Status
		if t.OutletID != existing.OutletID && existing.Status != enum.TableStatusFree {
			return apperror.NewConflictError("Table has an active order and cannot be moved to another outlet")
		}
	} else {
		t.Status = enum.TableStatusFree
	}
	if t.Capacity < 0 {
		return apperror.NewFieldError("capacity", "Capacity cannot be negative")
	}
	return nil
}

func tableDeleteGuard(billRepo repository.BillRepository) func(context.Context, *entity.DiningTable) error {
	return func(ctx context.Context, t *entity.DiningTable) error {
		active, err := billRepo.CountActiveByTable(ctx, t.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperror.NewConflictError("Table has an active order and cannot be deleted")
		}
		return nil
	}
}

func validateTaxGroup(_ context.Context, g, _ *entity.TaxGroup) error {
	rates := []struct {
		field string
		rate  *decimal.Decimal
	}{
		{"cgst_rate", &g.CGSTRate},
		{"sgst_rate", &g.SGSTRate},
		{"igst_rate", &g.IGSTRate},
		{"cess_rate", &g.CESSRate},
	}
	for _, r := range rates {
		if r.rate.IsNegative() || r.rate.GreaterThan(hundredPercent) {
			return apperror.NewFieldError(r.field, "Rate must be between 0 and 100")
		}
		*r.rate = r.rate.Round(2)
	}
	return nil
}

func validatePrinterSetting(_ context.Context, p, _ *entity.PrinterSetting) error {
	if !p.Purpose.IsValid() {
		return apperror.NewFieldError("purpose", "Purpose must be KOT or BILL")
	}
	if !p.Connection.IsValid() {
		return apperror.NewFieldError("connection", "Connection must be network, usb or none")
	}
	if p.Connection == enum.PrinterConnectionNetwork && p.Address == "" {
		return apperror.NewFieldError("address", "Network printers need an address")
	}
	if p.Connection == enum.PrinterConnectionUSB && p.USBPath == "" {
		return apperror.NewFieldError("usb_path", "USB printers need a device path")
	}
	if p.Purpose == enum.PrinterPurposeBill && p.KitchenCategoryID != nil {
		return apperror.NewFieldError("kitchen_category_id", "Bill printers cannot be bound to a kitchen category")
	}
	if p.PaperWidth == 0 {
		p.PaperWidth = 32
	}
	return nil
}
