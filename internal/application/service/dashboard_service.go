package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const dashboardDays = 7

// DashboardService provides the floor and sales overview of an outlet
type DashboardService struct {
	handoverRepo repository.HandoverRepository
	billRepo     repository.BillRepository
	tableRepo    repository.MasterRepository[entity.DiningTable]
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	handoverRepo repository.HandoverRepository,
	billRepo repository.BillRepository,
	tableRepo repository.MasterRepository[entity.DiningTable],
) *DashboardService {
	return &DashboardService{
		handoverRepo: handoverRepo,
		billRepo:     billRepo,
		tableRepo:    tableRepo,
		now:          time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	OutletID       uuid.UUID                     `json:"outlet_id"`
	Date           string                        `json:"date"`
	TodaySales     decimal.Decimal               `json:"today_sales"`
	TodayBills     int                           `json:"today_bills"`
	TodayDiscount  decimal.Decimal               `json:"today_discount"`
	TodayTax       decimal.Decimal               `json:"today_tax"`
	AverageBill    decimal.Decimal               `json:"average_bill"`
	OpenBills      int64                         `json:"open_bills"`
	BilledUnpaid   int64                         `json:"billed_unpaid"`
	FreeTables     int64                         `json:"free_tables"`
	OccupiedTables int64                         `json:"occupied_tables"`
	BilledTables   int64                         `json:"billed_tables"`
	Payments       []repository.PaymentModeTotal `json:"payments"`
	DailySalesData []DailySalesPoint             `json:"daily_sales_data"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date      string          `json:"date"`
	BillCount int             `json:"bill_count"`
	NetAmount decimal.Decimal `json:"net_amount"`
}

// GetDashboardStats returns today's figures and the last week of sales
func (s *DashboardService) GetDashboardStats(ctx context.Context, outletID uuid.UUID) (*DashboardStats, error) {
	if !infraRepo.CanAccessOutlet(ctx, outletID) {
		return nil, apperror.NewNotFoundError("Outlet")
	}

	now := s.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	todayScope := repository.HandoverScope{OutletID: outletID, From: today, To: today.AddDate(0, 0, 1)}

	stats := &DashboardStats{
		OutletID:       outletID,
		Date:           today.Format("2006-01-02"),
		DailySalesData: make([]DailySalesPoint, dashboardDays),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		agg, err := s.handoverRepo.AggregateBills(gctx, todayScope)
		if err != nil {
			return err
		}
		stats.TodaySales = agg.NetAmount
		stats.TodayBills = agg.BillCount
		stats.TodayDiscount = agg.DiscountAmount
		stats.TodayTax = agg.TaxAmount
		if agg.BillCount > 0 {
			stats.AverageBill = agg.NetAmount.Div(decimal.NewFromInt(int64(agg.BillCount))).Round(2)
		}
		return nil
	})
	g.Go(func() (err error) {
		stats.Payments, err = s.handoverRepo.PaymentTotals(gctx, todayScope)
		return err
	})
	g.Go(func() (err error) {
		stats.OpenBills, err = s.countBills(gctx, outletID, enum.BillStatusOpen)
		return err
	})
	g.Go(func() (err error) {
		stats.BilledUnpaid, err = s.countBills(gctx, outletID, enum.BillStatusBilled)
		return err
	})
	g.Go(func() (err error) {
		stats.FreeTables, err = s.countTables(gctx, outletID, enum.TableStatusFree)
		return err
	})
	g.Go(func() (err error) {
		stats.OccupiedTables, err = s.countTables(gctx, outletID, enum.TableStatusOccupied)
		return err
	})
	g.Go(func() (err error) {
		stats.BilledTables, err = s.countTables(gctx, outletID, enum.TableStatusBilled)
		return err
	})

	// Each day writes its own slot.
	for i := 0; i < dashboardDays; i++ {
		day := today.AddDate(0, 0, i-dashboardDays+1)
		slot := &stats.DailySalesData[i]
		g.Go(func() error {
			agg, err := s.handoverRepo.AggregateBills(gctx, repository.HandoverScope{
				OutletID: outletID,
				From:     day,
				To:       day.AddDate(0, 0, 1),
			})
			if err != nil {
				return err
			}
			*slot = DailySalesPoint{
				Date:      day.Format("2006-01-02"),
				BillCount: agg.BillCount,
				NetAmount: agg.NetAmount,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.Payments == nil {
		stats.Payments = []repository.PaymentModeTotal{}
	}
	return stats, nil
}

func (s *DashboardService) countBills(ctx context.Context, outletID uuid.UUID, status enum.BillStatus) (int64, error) {
	_, total, err := s.billRepo.List(ctx, repository.BillFilter{
		Params:   &pagination.PaginationParams{Page: 1, PerPage: 1},
		OutletID: &outletID,
		Status:   &status,
	})
	return total, err
}

func (s *DashboardService) countTables(ctx context.Context, outletID uuid.UUID, status enum.TableStatus) (int64, error) {
	_, total, err := s.tableRepo.List(ctx, repository.MasterFilter{
		Params: &pagination.PaginationParams{Page: 1, PerPage: 1},
		Filters: map[string]interface{}{
			"outlet_id": outletID,
			"status":    status,
			"is_active": true,
		},
	})
	return total, err
}
