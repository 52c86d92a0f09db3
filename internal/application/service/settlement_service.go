package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/export"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/shopspring/decimal"
)

// maxExportRows bounds a settlement export
const maxExportRows = 10000

// SettlementService handles settlement reporting and replacement
type SettlementService struct {
	tx              repository.Transactor
	settlementRepo  repository.SettlementRepository
	billRepo        repository.BillRepository
	paymentModeRepo repository.MasterRepository[entity.PaymentMode]
	now             func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	tx repository.Transactor,
	settlementRepo repository.SettlementRepository,
	billRepo repository.BillRepository,
	paymentModeRepo repository.MasterRepository[entity.PaymentMode],
) *SettlementService {
	return &SettlementService{
		tx:              tx,
		settlementRepo:  settlementRepo,
		billRepo:        billRepo,
		paymentModeRepo: paymentModeRepo,
		now:             time.Now,
	}
}

// SettlementSummary totals live settlements by payment mode
type SettlementSummary struct {
	Modes  []repository.PaymentModeTotal `json:"modes"`
	Count  int                           `json:"count"`
	Amount decimal.Decimal               `json:"amount"`
}

// ReplaceSettlementInput represents the replace settlement input
type ReplaceSettlementInput struct {
	BillID   uuid.UUID
	UserID   uuid.UUID
	Version  *int64
	Payments []PaymentInput
}

// List returns a page of live settlements
func (s *SettlementService) List(ctx context.Context, filter repository.SettlementFilter) (*pagination.PaginatedResult[entity.Settlement], error) {
	if filter.Params == nil {
		filter.Params = pagination.DefaultPagination()
	}
	filter.Params.Validate()

	rows, total, err := s.settlementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(rows, pagination.NewPagination(filter.Params.Page, filter.Params.PerPage, total)), nil
}

// Summary totals live settlements by payment mode
func (s *SettlementService) Summary(ctx context.Context, filter repository.SettlementFilter) (*SettlementSummary, error) {
	filter.Params = nil
	modes, err := s.settlementRepo.SummaryByMode(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := &SettlementSummary{Modes: modes, Amount: decimal.Zero}
	for _, m := range modes {
		summary.Count += m.Count
		summary.Amount = summary.Amount.Add(m.Amount)
	}
	return summary, nil
}

// Replace supersedes the live settlements of a settled bill with a new set
// that still adds up to the bill net amount. Every replaced pair is logged.
func (s *SettlementService) Replace(ctx context.Context, input *ReplaceSettlementInput) ([]entity.Settlement, error) {
	var created []entity.Settlement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByID(ctx, input.BillID)
		if err != nil {
			return err
		}
		if bill == nil || !infraRepo.CanAccessOutlet(ctx, bill.OutletID) {
			return apperror.NewNotFoundError("Bill")
		}
		if input.Version != nil && *input.Version != bill.Version {
			return apperror.ErrStaleWrite
		}
		if bill.Status != enum.BillStatusSettled {
			return apperror.NewUnprocessableError("Only settled bills can have their settlement replaced")
		}

		old, err := s.settlementRepo.ListByBill(ctx, bill.ID, false)
		if err != nil {
			return err
		}
		created, err = resolvePayments(ctx, s.paymentModeRepo, bill, input.UserID, input.Payments)
		if err != nil {
			return err
		}

		// The header write serializes concurrent replacements of one bill
		if err := s.billRepo.UpdateWithVersion(ctx, bill); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return apperror.ErrStaleWrite
			}
			return err
		}
		if _, err := s.settlementRepo.Supersede(ctx, bill.ID, s.now()); err != nil {
			return err
		}
		if err := s.settlementRepo.CreateBatch(ctx, created); err != nil {
			return err
		}
		return s.settlementRepo.CreateLogs(ctx, settlementLogs(bill.ID, input.UserID, old, created))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// settlementLogs pairs old and new tenders by position. Unmatched rows are
// logged against an empty counterpart.
func settlementLogs(billID, editor uuid.UUID, old, replacement []entity.Settlement) []entity.SettlementLog {
	n := max(len(old), len(replacement))
	logs := make([]entity.SettlementLog, 0, n)
	for i := 0; i < n; i++ {
		entry := entity.SettlementLog{BillID: billID, EditedBy: editor, OldAmount: decimal.Zero, NewAmount: decimal.Zero}
		if i < len(old) {
			entry.OldPaymentMode = old[i].PaymentMode
			entry.OldAmount = old[i].Amount
		}
		if i < len(replacement) {
			entry.NewPaymentMode = replacement[i].PaymentMode
			entry.NewAmount = replacement[i].Amount
		}
		logs = append(logs, entry)
	}
	return logs
}

// Logs returns settlement replacement history, optionally for one bill
func (s *SettlementService) Logs(ctx context.Context, billID *uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.SettlementLog], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	logs, total, err := s.settlementRepo.ListLogs(ctx, billID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(logs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// Export writes the settlements and their summary as an xlsx workbook
func (s *SettlementService) Export(ctx context.Context, filter repository.SettlementFilter, w io.Writer) error {
	var rows []entity.Settlement
	for page := 1; len(rows) < maxExportRows; page++ {
		filter.Params = &pagination.PaginationParams{Page: page, PerPage: 100}
		batch, _, err := s.settlementRepo.List(ctx, filter)
		if err != nil {
			return err
		}
		rows = append(rows, batch...)
		if len(batch) < filter.Params.PerPage {
			break
		}
	}
	summary, err := s.Summary(ctx, filter)
	if err != nil {
		return err
	}

	detail := &export.Sheet{
		Name:    "Settlements",
		Headers: []string{"Date", "Bill No", "Payment Mode", "Amount", "Reference"},
	}
	for _, row := range rows {
		billNo := ""
		if row.Bill != nil && row.Bill.BillNo != nil {
			billNo = *row.Bill.BillNo
		}
		detail.AddRow(row.CreatedAt.Format(ticketDateLayout), billNo, row.PaymentMode, row.Amount, row.Reference)
	}

	totals := &export.Sheet{
		Name:    "Summary",
		Headers: []string{"Payment Mode", "Count", "Amount"},
	}
	for _, m := range summary.Modes {
		totals.AddRow(m.PaymentMode, m.Count, m.Amount)
	}
	totals.AddRow("Total", summary.Count, summary.Amount)

	return export.Write(w, detail, totals)
}
