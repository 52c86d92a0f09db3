package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/config"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/database"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/printer"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSpooler struct {
	mu   sync.Mutex
	jobs []*printer.Job
}

func (s *recordingSpooler) Submit(_ context.Context, job *printer.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *recordingSpooler) Name() string { return "recording" }
func (s *recordingSpooler) Close() error { return nil }

func (s *recordingSpooler) Jobs() []*printer.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*printer.Job(nil), s.jobs...)
}

type publishedEvent struct {
	OutletID uuid.UUID
	Type     string
	Payload  interface{}
}

type recordingEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (e *recordingEvents) Publish(outletID uuid.UUID, eventType string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, publishedEvent{OutletID: outletID, Type: eventType, Payload: payload})
}

func (e *recordingEvents) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		types = append(types, ev.Type)
	}
	return types
}

// fixture is a migrated in-memory database with one outlet, table "5",
// a 100.00 menu item and a cashier and manager account.
type fixture struct {
	db  *gorm.DB
	ctx context.Context

	jwt        *utils.JWTManager
	spooler    *recordingSpooler
	events     *recordingEvents
	tax        *TaxService
	printer    *PrinterService
	billing    *BillingService
	settlement *SettlementService
	handover   *HandoverService
	masters    *MasterServices
	auth       *AuthService
	users      *UserService

	outlet   *entity.Outlet
	table    *entity.DiningTable
	item     *entity.MenuItem
	cashier  *entity.User
	manager  *entity.User
	password string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaultData(db, config.AdminConfig{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:       db,
		ctx:      infraRepo.WithSkipOutletScope(context.Background(), true),
		jwt:      utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour, 5*time.Minute),
		spooler:  &recordingSpooler{},
		events:   &recordingEvents{},
		password: "secret123",
	}

	tx := infraRepo.NewTransactor(db)
	billRepo := infraRepo.NewBillRepository(db)
	userRepo := infraRepo.NewUserRepository(db)
	refs := infraRepo.NewReferenceChecker(db)
	repos := MasterRepositories{
		Countries:            infraRepo.NewMasterRepository[entity.Country](db),
		States:               infraRepo.NewMasterRepository[entity.State](db),
		Cities:               infraRepo.NewMasterRepository[entity.City](db),
		Brands:               infraRepo.NewMasterRepository[entity.Brand](db),
		Hotels:               infraRepo.NewMasterRepository[entity.Hotel](db),
		Outlets:              infraRepo.NewMasterRepository[entity.Outlet](db),
		Departments:          infraRepo.NewMasterRepository[entity.Department](db),
		Tables:               infraRepo.NewMasterRepository[entity.DiningTable](db),
		TaxGroups:            infraRepo.NewMasterRepository[entity.TaxGroup](db),
		KitchenMainGroups:    infraRepo.NewMasterRepository[entity.KitchenMainGroup](db),
		KitchenCategories:    infraRepo.NewMasterRepository[entity.KitchenCategory](db),
		KitchenSubCategories: infraRepo.NewMasterRepository[entity.KitchenSubCategory](db),
		MenuItems:            infraRepo.NewMasterRepository[entity.MenuItem](db),
		Units:                infraRepo.NewMasterRepository[entity.Unit](db),
		Warehouses:           infraRepo.NewMasterRepository[entity.Warehouse](db),
		Designations:         infraRepo.NewMasterRepository[entity.Designation](db),
		UserTypes:            infraRepo.NewMasterRepository[entity.UserType](db),
		Customers:            infraRepo.NewMasterRepository[entity.Customer](db),
		PaymentModes:         infraRepo.NewMasterRepository[entity.PaymentMode](db),
		PrinterSettings:      infraRepo.NewMasterRepository[entity.PrinterSetting](db),
	}

	f.tax = NewTaxService(repos.Outlets, repos.Departments, repos.TaxGroups)
	f.printer = NewPrinterService(f.spooler, infraRepo.NewPrinterSettingRepository(db), billRepo, repos.Outlets, userRepo, 32)
	t.Cleanup(f.printer.Wait)
	f.billing = NewBillingService(BillingDeps{
		Transactor:      tx,
		BillRepo:        billRepo,
		TableRepo:       infraRepo.NewTableRepository(db),
		SettlementRepo:  infraRepo.NewSettlementRepository(db),
		MenuItemRepo:    repos.MenuItems,
		PaymentModeRepo: repos.PaymentModes,
		OutletRepo:      repos.Outlets,
		TaxService:      f.tax,
		PrinterService:  f.printer,
		Events:          f.events,
		JWTManager:      f.jwt,
	})
	f.settlement = NewSettlementService(tx, infraRepo.NewSettlementRepository(db), billRepo, repos.PaymentModes)
	f.handover = NewHandoverService(infraRepo.NewHandoverRepository(db), userRepo, repos.Outlets, repos.PaymentModes, nil, nil)
	f.masters = NewMasterServices(repos, refs, billRepo)
	f.auth = NewAuthService(userRepo, f.jwt, nil)
	f.users = NewUserService(tx, userRepo, infraRepo.NewRoleRepository(db), infraRepo.NewPermissionRepository(db), refs)

	brand := &entity.Brand{Name: "Spice Route", IsActive: true}
	require.NoError(t, db.Create(brand).Error)
	hotel := &entity.Hotel{BrandID: brand.ID, Name: "Spice Route Pune", IsActive: true}
	require.NoError(t, db.Create(hotel).Error)
	f.outlet = &entity.Outlet{HotelID: hotel.ID, Name: "Main Restaurant", Code: "MR", BillPrefix: "MR", IsActive: true}
	require.NoError(t, db.Create(f.outlet).Error)
	f.table = f.addTable(t, "5")
	f.item = f.addItem(t, "Paneer Tikka", "100", nil)

	f.cashier = f.addUser(t, "cashier1", "cashier")
	f.manager = f.addUser(t, "manager1", "manager")
	return f
}

func (f *fixture) addTable(t *testing.T, name string) *entity.DiningTable {
	t.Helper()
	table := &entity.DiningTable{OutletID: f.outlet.ID, Name: name, Capacity: 4, IsActive: true}
	require.NoError(t, f.db.Create(table).Error)
	return table
}

func (f *fixture) addItem(t *testing.T, name, rate string, categoryID *uuid.UUID) *entity.MenuItem {
	t.Helper()
	item := &entity.MenuItem{
		OutletID:          f.outlet.ID,
		KitchenCategoryID: categoryID,
		Name:              name,
		Rate:              dec(rate),
		IsActive:          true,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *fixture) addUser(t *testing.T, username, role string) *entity.User {
	t.Helper()
	hashed, err := utils.HashPassword(f.password)
	require.NoError(t, err)
	user := &entity.User{
		Username: username,
		Password: hashed,
		FullName: username,
		OutletID: &f.outlet.ID,
		IsActive: true,
	}
	require.NoError(t, f.db.Omit("Roles").Create(user).Error)

	var r entity.Role
	require.NoError(t, f.db.First(&r, "name = ?", role).Error)
	require.NoError(t, infraRepo.NewUserRepository(f.db).SyncRoles(context.Background(), user.ID, []uint{r.ID}))
	return user
}

// outletCtx scopes ctx to the fixture outlet the way the auth middleware does
func (f *fixture) outletCtx() context.Context {
	return infraRepo.WithOutlet(context.Background(), f.outlet.ID)
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *entity.Bill {
	t.Helper()
	var bill entity.Bill
	require.NoError(t, f.db.First(&bill, "id = ?", id).Error)
	return &bill
}

func (f *fixture) tableStatus(t *testing.T, id uuid.UUID) string {
	t.Helper()
	var table entity.DiningTable
	require.NoError(t, f.db.First(&table, "id = ?", id).Error)
	return table.Status.String()
}

func (f *fixture) openBill(t *testing.T, qty int) *entity.Bill {
	t.Helper()
	res, err := f.billing.CreateBill(f.ctx, &CreateBillInput{
		UserID:  f.cashier.ID,
		TableID: &f.table.ID,
		Pax:     2,
		Items:   []BillItemInput{{MenuItemID: f.item.ID, Qty: qty}},
	})
	require.NoError(t, err)
	return res.Bill
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected *apperror.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
