package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/ws"
	"github.com/shopspring/decimal"
)

// ApprovalPurposeReverseBill is the purpose an approval token must carry to reverse a bill
const ApprovalPurposeReverseBill = "bill.reverse"

// EventPublisher pushes kitchen display events to the clients of an outlet
type EventPublisher interface {
	Publish(outletID uuid.UUID, eventType string, payload interface{})
}

// BillingDeps collects the collaborators of BillingService
type BillingDeps struct {
	Transactor      repository.Transactor
	BillRepo        repository.BillRepository
	TableRepo       repository.TableRepository
	SettlementRepo  repository.SettlementRepository
	MenuItemRepo    repository.MasterRepository[entity.MenuItem]
	PaymentModeRepo repository.MasterRepository[entity.PaymentMode]
	OutletRepo      repository.MasterRepository[entity.Outlet]
	TaxService      *TaxService
	PrinterService  *PrinterService
	Events          EventPublisher
	JWTManager      *utils.JWTManager
}

// BillingService runs the order, KOT, bill and settlement workflow.
//
// Every mutation runs in one transaction that re-reads the bill and writes the
// header back with a version check; a lost race returns ErrStaleWrite.
// Printing and kitchen display events run after commit and only log failures.
type BillingService struct {
	tx              repository.Transactor
	billRepo        repository.BillRepository
	tableRepo       repository.TableRepository
	settlementRepo  repository.SettlementRepository
	menuItemRepo    repository.MasterRepository[entity.MenuItem]
	paymentModeRepo repository.MasterRepository[entity.PaymentMode]
	outletRepo      repository.MasterRepository[entity.Outlet]
	tax             *TaxService
	printer         *PrinterService
	events          EventPublisher
	jwt             *utils.JWTManager
	now             func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(deps BillingDeps) *BillingService {
	return &BillingService{
		tx:              deps.Transactor,
		billRepo:        deps.BillRepo,
		tableRepo:       deps.TableRepo,
		settlementRepo:  deps.SettlementRepo,
		menuItemRepo:    deps.MenuItemRepo,
		paymentModeRepo: deps.PaymentModeRepo,
		outletRepo:      deps.OutletRepo,
		tax:             deps.TaxService,
		printer:         deps.PrinterService,
		events:          deps.Events,
		jwt:             deps.JWTManager,
		now:             time.Now,
	}
}

// BillItemInput is one line punched on a KOT
type BillItemInput struct {
	MenuItemID   uuid.UUID
	Qty          int
	Rate         *decimal.Decimal
	IsNC         bool
	Instructions string
}

// CustomerInput carries the optional guest details of an order
type CustomerInput struct {
	CustomerID *uuid.UUID
	Name       string
	Mobile     string
	Address    string
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	UserID       uuid.UUID
	OutletID     *uuid.UUID
	TableID      *uuid.UUID
	DepartmentID *uuid.UUID
	OrderType    enum.OrderType
	Pax          int
	Customer     CustomerInput
	Items        []BillItemInput
}

// DiscountInput is a discount request. An empty type with zero value clears the discount.
type DiscountInput struct {
	Type   enum.DiscountType
	Value  decimal.Decimal
	Reason string
}

// NCInput marks a bill as no-charge
type NCInput struct {
	Name    string
	Purpose string
}

// CreateKOTInput represents the create KOT input. BillID selects an existing
// bill; otherwise the table's active bill is used or a new one is opened.
type CreateKOTInput struct {
	CreateBillInput
	BillID   *uuid.UUID
	Discount *DiscountInput
	NC       *NCInput
}

// KOTResult is the bill after a KOT or reverse KOT with the number assigned
type KOTResult struct {
	Bill  *entity.Bill `json:"bill"`
	KOTNo int          `json:"kot_no"`
}

// ReverseLineInput cancels qty of an item punched on KOT KOTNo. BillDetailID
// pins the exact line when the item appears more than once on that KOT.
type ReverseLineInput struct {
	MenuItemID   uuid.UUID
	KOTNo        int
	BillDetailID *uuid.UUID
	Qty          int
	Reason       string
}

// ReverseKOTInput represents the reverse KOT input
type ReverseKOTInput struct {
	BillID  uuid.UUID
	UserID  uuid.UUID
	Version *int64
	Reason  string
	Lines   []ReverseLineInput
}

// ApplyDiscountInput represents the apply discount input
type ApplyDiscountInput struct {
	BillID   uuid.UUID
	UserID   uuid.UUID
	Version  *int64
	Discount DiscountInput
}

// SetNCInput toggles the no-charge designation of a bill
type SetNCInput struct {
	BillID  uuid.UUID
	UserID  uuid.UUID
	Version *int64
	IsNC    bool
	NC      NCInput
}

// PaymentInput is one tender of a settlement. The mode is resolved by id, or by name.
type PaymentInput struct {
	PaymentModeID *uuid.UUID
	PaymentMode   string
	Amount        decimal.Decimal
	Reference     string
}

// SettleInput represents the settle bill input
type SettleInput struct {
	BillID   uuid.UUID
	UserID   uuid.UUID
	Version  *int64
	Payments []PaymentInput
}

// ReverseBillInput represents the reverse bill input
type ReverseBillInput struct {
	BillID        uuid.UUID
	UserID        uuid.UUID
	Version       *int64
	Reason        string
	ApprovalToken string
}

// TransferTableInput moves an active bill to another table
type TransferTableInput struct {
	BillID  uuid.UUID
	TableID uuid.UUID
	UserID  uuid.UUID
	Version *int64
}

// BillEvent is the kitchen display payload of a workflow event
type BillEvent struct {
	BillID  uuid.UUID              `json:"bill_id"`
	TableID *uuid.UUID             `json:"table_id,omitempty"`
	Table   string                 `json:"table,omitempty"`
	BillNo  string                 `json:"bill_no,omitempty"`
	KOTNo   int                    `json:"kot_no,omitempty"`
	Status  enum.BillStatus        `json:"status"`
	Items   []entity.KOTTicketLine `json:"items,omitempty"`
}

// CreateBill opens a bill on a table with its first KOT. It fails when the
// table already has an open or billed bill.
func (s *BillingService) CreateBill(ctx context.Context, input *CreateBillInput) (*KOTResult, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var bill *entity.Bill
	var kot *entity.KOT
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		table, err := s.resolveTable(ctx, input)
		if err != nil {
			return err
		}
		if table != nil {
			active, err := s.billRepo.GetActiveByTable(ctx, table.ID)
			if err != nil {
				return err
			}
			if active != nil {
				return apperror.NewConflictError(fmt.Sprintf("Table %s already has an active bill", table.Name))
			}
		}

		bill, err = s.openBill(ctx, input, table)
		if err != nil {
			return err
		}
		kot, err = s.appendKOT(ctx, bill, input.Items, input.UserID)
		if err != nil {
			return err
		}
		if err := s.recompute(ctx, bill); err != nil {
			return err
		}
		if err := s.save(ctx, bill); err != nil {
			return err
		}
		return s.setTableStatus(ctx, bill.TableID, enum.TableStatusOccupied)
	})
	if err != nil {
		return nil, err
	}

	s.afterKOT(ctx, bill, kot)
	return s.result(ctx, bill.ID, kot.No)
}

// CreateKOT punches a KOT on an existing or new bill, optionally applying a
// discount or NC designation in the same transaction.
func (s *BillingService) CreateKOT(ctx context.Context, input *CreateKOTInput) (*KOTResult, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if input.Discount != nil {
		if err := validateDiscount(*input.Discount); err != nil {
			return nil, err
		}
	}
	if input.NC != nil && strings.TrimSpace(input.NC.Name) == "" {
		return nil, apperror.NewFieldError("nc_name", "NC name is required")
	}

	var bill *entity.Bill
	var kot *entity.KOT
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		switch {
		case input.BillID != nil:
			bill, err = s.loadBill(ctx, *input.BillID, nil)
			if err != nil {
				return err
			}
			if !bill.Status.IsActive() {
				return apperror.NewUnprocessableError("Cannot add items to a " + strings.ToLower(bill.Status.String()) + " bill")
			}
		default:
			table, err := s.resolveTable(ctx, &input.CreateBillInput)
			if err != nil {
				return err
			}
			if table != nil {
				bill, err = s.billRepo.GetActiveByTable(ctx, table.ID)
				if err != nil {
					return err
				}
			}
			if bill == nil {
				bill, err = s.openBill(ctx, &input.CreateBillInput, table)
				if err != nil {
					return err
				}
			}
		}

		// Adding items to a printed bill reopens it; the bill number is kept
		if bill.Status == enum.BillStatusBilled {
			bill.Status = enum.BillStatusOpen
		}
		if input.Pax > 0 {
			bill.Pax = input.Pax
		}

		kot, err = s.appendKOT(ctx, bill, input.Items, input.UserID)
		if err != nil {
			return err
		}
		if input.Discount != nil {
			applyDiscount(bill, *input.Discount)
		}
		if input.NC != nil {
			applyNC(bill, true, *input.NC)
		}
		if err := s.recompute(ctx, bill); err != nil {
			return err
		}
		if err := checkFlatDiscount(bill); err != nil {
			return err
		}
		if err := s.save(ctx, bill); err != nil {
			return err
		}
		return s.setTableStatus(ctx, bill.TableID, enum.TableStatusOccupied)
	})
	if err != nil {
		return nil, err
	}

	s.afterKOT(ctx, bill, kot)
	return s.result(ctx, bill.ID, kot.No)
}

// CreateReverseKOT cancels punched quantities. Original lines are kept and
// their reversed quantity raised; cancellation rows are append-only.
func (s *BillingService) CreateReverseKOT(ctx context.Context, input *ReverseKOTInput) (*KOTResult, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewFieldError("lines", "At least one line is required")
	}
	for i, l := range input.Lines {
		if l.Qty <= 0 {
			return nil, apperror.NewFieldError(fmt.Sprintf("lines[%d].qty", i), "Quantity must be greater than zero")
		}
	}

	var bill *entity.Bill
	var revNo int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.loadBill(ctx, input.BillID, input.Version)
		if err != nil {
			return err
		}
		if !bill.Status.IsActive() {
			return apperror.NewUnprocessableError("Items can only be cancelled on an open or billed bill")
		}

		details, err := s.billRepo.GetDetails(ctx, bill.ID)
		if err != nil {
			return err
		}
		remaining := make(map[uuid.UUID]int, len(details))
		for i := range details {
			remaining[details[i].ID] = details[i].ActiveQty()
		}

		revNo = bill.LastRevKOTNo + 1
		var rows []entity.ReverseKOT
		for i, l := range input.Lines {
			candidates := matchLines(details, l)
			if len(candidates) == 0 {
				return apperror.NewFieldError(fmt.Sprintf("lines[%d]", i), fmt.Sprintf("Item not found on KOT %d", l.KOTNo))
			}
			available := 0
			for _, c := range candidates {
				available += remaining[c.ID]
			}
			if l.Qty > available {
				return apperror.NewFieldError(fmt.Sprintf("lines[%d].qty", i),
					fmt.Sprintf("Cannot cancel %d of %s on KOT %d, only %d active", l.Qty, candidates[0].ItemName, l.KOTNo, available))
			}

			reason := strings.TrimSpace(l.Reason)
			if reason == "" {
				reason = strings.TrimSpace(input.Reason)
			}
			need := l.Qty
			for _, c := range candidates {
				take := min(need, remaining[c.ID])
				if take == 0 {
					continue
				}
				ok, err := s.billRepo.IncrementRevQty(ctx, c.ID, take)
				if err != nil {
					return err
				}
				if !ok {
					return apperror.ErrStaleWrite
				}
				remaining[c.ID] -= take
				need -= take
				rows = append(rows, entity.ReverseKOT{
					BillID:       bill.ID,
					BillDetailID: c.ID,
					MenuItemID:   c.MenuItemID,
					ItemName:     c.ItemName,
					KOTNo:        c.KOTNo,
					RevKOTNo:     revNo,
					Qty:          take,
					Reason:       reason,
					CreatedBy:    input.UserID,
				})
				if need == 0 {
					break
				}
			}
		}

		if err := s.billRepo.CreateReversals(ctx, rows); err != nil {
			return err
		}
		bill.LastRevKOTNo = revNo
		if err := s.recompute(ctx, bill); err != nil {
			return err
		}
		return s.save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.afterReverseKOT(ctx, bill, revNo)
	return s.result(ctx, bill.ID, revNo)
}

// matchLines returns the lines a reverse request can draw from
func matchLines(details []entity.BillDetail, l ReverseLineInput) []*entity.BillDetail {
	var out []*entity.BillDetail
	for i := range details {
		d := &details[i]
		if l.BillDetailID != nil {
			if d.ID == *l.BillDetailID {
				return []*entity.BillDetail{d}
			}
			continue
		}
		if d.MenuItemID == l.MenuItemID && d.KOTNo == l.KOTNo {
			out = append(out, d)
		}
	}
	return out
}

// ApplyDiscount sets the bill discount and recomputes its totals
func (s *BillingService) ApplyDiscount(ctx context.Context, input *ApplyDiscountInput) (*entity.Bill, error) {
	if err := validateDiscount(input.Discount); err != nil {
		return nil, err
	}
	var billID uuid.UUID
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.loadBill(ctx, input.BillID, input.Version)
		if err != nil {
			return err
		}
		if !bill.Status.IsActive() {
			return apperror.NewUnprocessableError("Discount can only be applied to an open or billed bill")
		}
		billID = bill.ID

		applyDiscount(bill, input.Discount)
		if err := s.recompute(ctx, bill); err != nil {
			return err
		}
		if err := checkFlatDiscount(bill); err != nil {
			return err
		}
		return s.save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return s.billRepo.GetWithDetails(ctx, billID)
}

// SetNC marks a bill as no-charge, or clears the designation
func (s *BillingService) SetNC(ctx context.Context, input *SetNCInput) (*entity.Bill, error) {
	if input.IsNC && strings.TrimSpace(input.NC.Name) == "" {
		return nil, apperror.NewFieldError("nc_name", "NC name is required")
	}
	var billID uuid.UUID
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.loadBill(ctx, input.BillID, input.Version)
		if err != nil {
			return err
		}
		if !bill.Status.IsActive() {
			return apperror.NewUnprocessableError("NC can only be set on an open or billed bill")
		}
		billID = bill.ID

		applyNC(bill, input.IsNC, input.NC)
		if err := s.recompute(ctx, bill); err != nil {
			return err
		}
		return s.save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return s.billRepo.GetWithDetails(ctx, billID)
}

// MarkBilled finalizes a bill: assigns the outlet bill number, moves the
// table to billed and prints the bill. Marking a billed bill again reprints it.
func (s *BillingService) MarkBilled(ctx context.Context, billID, userID uuid.UUID, version *int64) (*entity.Bill, error) {
	var bill *entity.Bill
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.loadBill(ctx, billID, version)
		if err != nil {
			return err
		}
		if !bill.Status.IsActive() {
			return apperror.NewUnprocessableError("Bill is already " + strings.ToLower(bill.Status.String()))
		}

		if bill.Status == enum.BillStatusOpen {
			if err := s.recompute(ctx, bill); err != nil {
				return err
			}
		}
		if err := s.requireItems(ctx, bill); err != nil {
			return err
		}
		if err := s.finalize(ctx, bill, userID); err != nil {
			return err
		}
		bill.Status = enum.BillStatusBilled
		if err := s.save(ctx, bill); err != nil {
			return err
		}
		return s.setTableStatus(ctx, bill.TableID, enum.TableStatusBilled)
	})
	if err != nil {
		return nil, err
	}

	s.afterBilled(ctx, bill)
	return s.billRepo.GetWithDetails(ctx, bill.ID)
}

// Settle applies payments to a bill. The payments must add up to the net
// amount exactly; a settled bill cannot be settled again. A bill whose
// items were all cancelled closes with an empty payment list.
func (s *BillingService) Settle(ctx context.Context, input *SettleInput) (*entity.Bill, error) {
	var bill *entity.Bill
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.loadBill(ctx, input.BillID, input.Version)
		if err != nil {
			return err
		}
		switch bill.Status {
		case enum.BillStatusSettled:
			return apperror.NewConflictError("Bill is already settled")
		case enum.BillStatusReversed:
			return apperror.NewUnprocessableError("Bill has been reversed")
		case enum.BillStatusOpen:
			if err := s.recompute(ctx, bill); err != nil {
				return err
			}
		}
		if err := s.requireLines(ctx, bill); err != nil {
			return err
		}

		rows, err := resolvePayments(ctx, s.paymentModeRepo, bill, input.UserID, input.Payments)
		if err != nil {
			return err
		}

		if err := s.finalize(ctx, bill, input.UserID); err != nil {
			return err
		}
		now := s.now()
		bill.Status = enum.BillStatusSettled
		bill.SettledAt = &now
		bill.SettledBy = &input.UserID

		if err := s.settlementRepo.CreateBatch(ctx, rows); err != nil {
			return err
		}
		if err := s.save(ctx, bill); err != nil {
			return err
		}
		return s.releaseTable(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.publish(bill, ws.EventBillSettled, nil)
	return s.billRepo.GetWithDetails(ctx, bill.ID)
}

// resolvePayments validates tenders against the active payment modes and the bill net
func resolvePayments(ctx context.Context, modeRepo repository.MasterRepository[entity.PaymentMode], bill *entity.Bill, userID uuid.UUID, payments []PaymentInput) ([]entity.Settlement, error) {
	modes, _, err := modeRepo.List(ctx, repository.MasterFilter{
		Filters: map[string]interface{}{"is_active": true},
		OrderBy: "sort_order ASC",
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.PaymentMode, len(modes))
	byName := make(map[string]*entity.PaymentMode, len(modes))
	for i := range modes {
		byID[modes[i].ID] = &modes[i]
		byName[strings.ToLower(modes[i].Name)] = &modes[i]
	}

	total := decimal.Zero
	rows := make([]entity.Settlement, 0, len(payments))
	for i, p := range payments {
		field := fmt.Sprintf("payments[%d]", i)
		if !p.Amount.IsPositive() {
			return nil, apperror.NewFieldError(field+".amount", "Amount must be greater than zero")
		}
		var mode *entity.PaymentMode
		if p.PaymentModeID != nil {
			mode = byID[*p.PaymentModeID]
		} else {
			mode = byName[strings.ToLower(strings.TrimSpace(p.PaymentMode))]
		}
		if mode == nil {
			return nil, apperror.NewFieldError(field+".payment_mode", "Unknown or inactive payment mode")
		}
		modeID := mode.ID
		amount := p.Amount.Round(2)
		total = total.Add(amount)
		rows = append(rows, entity.Settlement{
			BillID:        bill.ID,
			OutletID:      bill.OutletID,
			PaymentModeID: &modeID,
			PaymentMode:   mode.Name,
			Amount:        amount,
			Reference:     p.Reference,
			CreatedBy:     userID,
		})
	}

	if !total.Equal(bill.NetAmount) {
		return nil, apperror.NewFieldError("payments",
			fmt.Sprintf("Payments total %s does not match the bill net amount %s", money(total), money(bill.NetAmount)))
	}
	return rows, nil
}

// ReverseBill cancels a bill. It needs an approval token issued by a user
// allowed to reverse bills. Lines and settlements are kept.
func (s *BillingService) ReverseBill(ctx context.Context, input *ReverseBillInput) (*entity.Bill, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperror.NewFieldError("reason", "Reason is required")
	}
	if input.ApprovalToken == "" {
		return nil, apperror.NewForbiddenError("Reversing a bill requires approval")
	}
	approval, err := s.jwt.ValidateApprovalToken(input.ApprovalToken, ApprovalPurposeReverseBill)
	if err != nil {
		return nil, apperror.NewForbiddenError("Approval is invalid or has expired")
	}
	if approval.BillID == nil {
		return nil, apperror.NewForbiddenError("Approval must name the bill")
	}
	if *approval.BillID != input.BillID {
		return nil, apperror.NewForbiddenError("Approval was issued for another bill")
	}

	var bill *entity.Bill
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.loadBill(ctx, input.BillID, input.Version)
		if err != nil {
			return err
		}
		if bill.Status == enum.BillStatusReversed {
			return apperror.NewConflictError("Bill is already reversed")
		}
		held := bill.Status.IsActive()

		now := s.now()
		approver := approval.ApproverID
		bill.Status = enum.BillStatusReversed
		bill.ReversedAt = &now
		bill.ReversedBy = &input.UserID
		bill.ReverseApprover = &approver
		bill.ReverseReason = strings.TrimSpace(input.Reason)
		if err := s.save(ctx, bill); err != nil {
			return err
		}
		if held {
			return s.releaseTable(ctx, bill)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(bill, ws.EventBillReversed, nil)
	return s.billRepo.GetWithDetails(ctx, bill.ID)
}

// TransferTable moves an active bill to a free table of the same outlet
func (s *BillingService) TransferTable(ctx context.Context, input *TransferTableInput) (*entity.Bill, error) {
	var billID uuid.UUID
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.loadBill(ctx, input.BillID, input.Version)
		if err != nil {
			return err
		}
		if !bill.Status.IsActive() || bill.TableID == nil {
			return apperror.NewUnprocessableError("Only an active dine-in bill can change tables")
		}
		if *bill.TableID == input.TableID {
			return apperror.NewFieldError("table_id", "Bill is already on this table")
		}
		billID = bill.ID

		target, err := s.tableRepo.GetByID(ctx, input.TableID)
		if err != nil {
			return err
		}
		if target == nil || target.OutletID != bill.OutletID || !target.IsActive {
			return apperror.NewNotFoundError("Table")
		}
		active, err := s.billRepo.GetActiveByTable(ctx, target.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperror.NewConflictError(fmt.Sprintf("Table %s already has an active bill", target.Name))
		}

		from := *bill.TableID
		bill.TableID = &target.ID
		if target.DepartmentID != nil {
			bill.DepartmentID = target.DepartmentID
		}
		if bill.Status == enum.BillStatusOpen {
			if err := s.recompute(ctx, bill); err != nil {
				return err
			}
		}
		if err := s.save(ctx, bill); err != nil {
			return err
		}

		status := enum.TableStatusOccupied
		if bill.Status == enum.BillStatusBilled {
			status = enum.TableStatusBilled
		}
		if err := s.tableRepo.SetStatus(ctx, target.ID, status); err != nil {
			return err
		}
		remaining, err := s.billRepo.CountActiveByTable(ctx, from, bill.ID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			return s.tableRepo.SetStatus(ctx, from, enum.TableStatusFree)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.billRepo.GetWithDetails(ctx, billID)
}

// GetBill returns a bill with its lines, KOTs, reversals and live settlements
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil || !infraRepo.CanAccessOutlet(ctx, bill.OutletID) {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills returns a page of bills visible to the caller
func (s *BillingService) ListBills(ctx context.Context, filter repository.BillFilter) (*pagination.PaginatedResult[entity.Bill], error) {
	if filter.Params == nil {
		filter.Params = pagination.DefaultPagination()
	}
	filter.Params.Validate()

	bills, total, err := s.billRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(bills, pagination.NewPagination(filter.Params.Page, filter.Params.PerPage, total)), nil
}

// ActiveBillForTable returns the open or billed bill seated at a table
func (s *BillingService) ActiveBillForTable(ctx context.Context, tableID uuid.UUID) (*entity.Bill, error) {
	table, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil || !infraRepo.CanAccessOutlet(ctx, table.OutletID) {
		return nil, apperror.NewNotFoundError("Table")
	}
	bill, err := s.billRepo.GetActiveByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Active bill")
	}
	return s.billRepo.GetWithDetails(ctx, bill.ID)
}

// ReprintBill prints a billed or settled bill again
func (s *BillingService) ReprintBill(ctx context.Context, billID uuid.UUID) (*entity.BillTicket, error) {
	bill, err := s.loadBill(ctx, billID, nil)
	if err != nil {
		return nil, err
	}
	if !bill.Status.IsBilled() {
		return nil, apperror.NewUnprocessableError("Only billed or settled bills can be reprinted")
	}
	if s.printer == nil {
		return nil, apperror.NewUnprocessableError("Printing is not configured")
	}
	return s.printer.PrintBill(ctx, billID)
}

// ReprintKOT prints a KOT of a bill again
func (s *BillingService) ReprintKOT(ctx context.Context, billID uuid.UUID, kotNo int) ([]PrintResult, error) {
	if _, err := s.loadBill(ctx, billID, nil); err != nil {
		return nil, err
	}
	if s.printer == nil {
		return nil, apperror.NewUnprocessableError("Printing is not configured")
	}
	return s.printer.PrintKOT(ctx, billID, kotNo)
}

// --- workflow helpers ---

// loadBill reads a bill the caller may act on. A non-nil version must match.
func (s *BillingService) loadBill(ctx context.Context, id uuid.UUID, version *int64) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil || !infraRepo.CanAccessOutlet(ctx, bill.OutletID) {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if version != nil && *version != bill.Version {
		return nil, apperror.ErrStaleWrite
	}
	return bill, nil
}

// resolveTable validates the order type and returns the table an order is seated at
func (s *BillingService) resolveTable(ctx context.Context, input *CreateBillInput) (*entity.DiningTable, error) {
	if input.OrderType == "" {
		input.OrderType = enum.OrderTypeDineIn
		if input.TableID == nil {
			input.OrderType = enum.OrderTypeQuickBill
		}
	}
	if !input.OrderType.IsValid() {
		return nil, apperror.NewFieldError("order_type", "Order type must be DINE_IN, PICKUP, DELIVERY or QUICK_BILL")
	}
	if input.TableID == nil {
		if input.OrderType.NeedsTable() {
			return nil, apperror.NewFieldError("table_id", "Table is required for dine-in orders")
		}
		return nil, nil
	}

	table, err := s.tableRepo.GetByID(ctx, *input.TableID)
	if err != nil {
		return nil, err
	}
	if table == nil || !infraRepo.CanAccessOutlet(ctx, table.OutletID) {
		return nil, apperror.NewNotFoundError("Table")
	}
	if !table.IsActive {
		return nil, apperror.NewUnprocessableError(fmt.Sprintf("Table %s is inactive", table.Name))
	}
	if input.OutletID != nil && *input.OutletID != table.OutletID {
		return nil, apperror.NewFieldError("table_id", "Table belongs to another outlet")
	}
	return table, nil
}

// openBill inserts a new open bill header
func (s *BillingService) openBill(ctx context.Context, input *CreateBillInput, table *entity.DiningTable) (*entity.Bill, error) {
	var outletID uuid.UUID
	switch {
	case table != nil:
		outletID = table.OutletID
	case input.OutletID != nil:
		outletID = *input.OutletID
	default:
		id, ok := infraRepo.GetOutletID(ctx)
		if !ok {
			return nil, apperror.NewFieldError("outlet_id", "Outlet is required")
		}
		outletID = id
	}
	if !infraRepo.CanAccessOutlet(ctx, outletID) {
		return nil, apperror.NewNotFoundError("Outlet")
	}
	outlet, err := s.outletRepo.GetByID(ctx, outletID)
	if err != nil {
		return nil, err
	}
	if outlet == nil || !outlet.IsActive {
		return nil, apperror.NewNotFoundError("Outlet")
	}

	departmentID := input.DepartmentID
	if departmentID == nil && table != nil {
		departmentID = table.DepartmentID
	}
	if departmentID != nil {
		if err := s.tax.CheckDepartment(ctx, outletID, *departmentID); err != nil {
			return nil, err
		}
	}

	bill := &entity.Bill{
		OutletID:        outletID,
		DepartmentID:    departmentID,
		OrderType:       input.OrderType,
		CustomerID:      input.Customer.CustomerID,
		CustomerName:    strings.TrimSpace(input.Customer.Name),
		CustomerMobile:  strings.TrimSpace(input.Customer.Mobile),
		CustomerAddress: strings.TrimSpace(input.Customer.Address),
		Pax:             input.Pax,
		Status:          enum.BillStatusOpen,
		Version:         1,
		CreatedBy:       input.UserID,
	}
	if table != nil {
		bill.TableID = &table.ID
	}
	if err := s.billRepo.Create(ctx, bill); err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.NewConflictError("Table already has an active bill")
		}
		return nil, err
	}
	return bill, nil
}

// appendKOT inserts the next KOT of a bill with its lines
func (s *BillingService) appendKOT(ctx context.Context, bill *entity.Bill, items []BillItemInput, userID uuid.UUID) (*entity.KOT, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MenuItemID)
	}
	menuItems, err := s.menuItemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.MenuItem, len(menuItems))
	for i := range menuItems {
		byID[menuItems[i].ID] = &menuItems[i]
	}

	kot := &entity.KOT{
		BillID:    bill.ID,
		No:        bill.LastKOTNo + 1,
		OutletID:  bill.OutletID,
		TableID:   bill.TableID,
		CreatedBy: userID,
	}
	for i, item := range items {
		menuItem, ok := byID[item.MenuItemID]
		if !ok || !menuItem.IsActive || menuItem.OutletID != bill.OutletID {
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].menu_item_id", i), "Menu item not found in this outlet")
		}
		rate := menuItem.Rate
		if item.Rate != nil {
			rate = item.Rate.Round(2)
		}
		kot.Details = append(kot.Details, entity.BillDetail{
			BillID:            bill.ID,
			KOTNo:             kot.No,
			MenuItemID:        menuItem.ID,
			ItemName:          menuItem.Name,
			KitchenCategoryID: menuItem.KitchenCategoryID,
			Qty:               item.Qty,
			Rate:              rate,
			Amount:            rate.Mul(decimal.NewFromInt(int64(item.Qty))).Round(2),
			IsNC:              item.IsNC,
			Instructions:      strings.TrimSpace(item.Instructions),
		})
	}

	if err := s.billRepo.CreateKOT(ctx, kot); err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.ErrStaleWrite
		}
		return nil, err
	}
	bill.LastKOTNo = kot.No
	return kot, nil
}

// recompute refreshes the bill totals from its lines and the current tax rates
func (s *BillingService) recompute(ctx context.Context, bill *entity.Bill) error {
	details, err := s.billRepo.GetDetails(ctx, bill.ID)
	if err != nil {
		return err
	}
	tax, err := s.tax.ResolveRates(ctx, bill.OutletID, bill.DepartmentID)
	if err != nil {
		return err
	}
	ApplyTotals(bill, details, tax.Rates)
	return nil
}

func (s *BillingService) requireItems(ctx context.Context, bill *entity.Bill) error {
	details, err := s.billRepo.GetDetails(ctx, bill.ID)
	if err != nil {
		return err
	}
	for i := range details {
		if details[i].ActiveQty() > 0 {
			return nil
		}
	}
	return apperror.NewUnprocessableError("Bill has no active items")
}

// requireLines fails on a bill that never had a line. A bill whose lines
// were all cancelled nets to zero and settles with no payments.
func (s *BillingService) requireLines(ctx context.Context, bill *entity.Bill) error {
	details, err := s.billRepo.GetDetails(ctx, bill.ID)
	if err != nil {
		return err
	}
	if len(details) == 0 {
		return apperror.NewUnprocessableError("Bill has no items")
	}
	return nil
}

// finalize assigns the bill number and billing actor on first finalization
func (s *BillingService) finalize(ctx context.Context, bill *entity.Bill, userID uuid.UUID) error {
	if bill.BillNo == nil {
		no, err := s.billRepo.NextBillNumber(ctx, bill.OutletID)
		if err != nil {
			return err
		}
		bill.BillNo = &no
	}
	if bill.BilledAt == nil {
		now := s.now()
		bill.BilledAt = &now
		bill.BilledBy = &userID
	}
	return nil
}

// save writes the header with the version check
func (s *BillingService) save(ctx context.Context, bill *entity.Bill) error {
	err := s.billRepo.UpdateWithVersion(ctx, bill)
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperror.ErrStaleWrite
	}
	if infraRepo.IsDuplicateKey(err) {
		return apperror.NewConflictError("Table already has an active bill")
	}
	return err
}

func (s *BillingService) setTableStatus(ctx context.Context, tableID *uuid.UUID, status enum.TableStatus) error {
	if tableID == nil {
		return nil
	}
	return s.tableRepo.SetStatus(ctx, *tableID, status)
}

// releaseTable frees the bill's table unless another active bill is seated there
func (s *BillingService) releaseTable(ctx context.Context, bill *entity.Bill) error {
	if bill.TableID == nil {
		return nil
	}
	others, err := s.billRepo.CountActiveByTable(ctx, *bill.TableID, bill.ID)
	if err != nil {
		return err
	}
	if others > 0 {
		return s.tableRepo.SetStatus(ctx, *bill.TableID, enum.TableStatusOccupied)
	}
	return s.tableRepo.SetStatus(ctx, *bill.TableID, enum.TableStatusFree)
}

func (s *BillingService) result(ctx context.Context, billID uuid.UUID, no int) (*KOTResult, error) {
	bill, err := s.billRepo.GetWithDetails(ctx, billID)
	if err != nil {
		return nil, err
	}
	return &KOTResult{Bill: bill, KOTNo: no}, nil
}

func validateItems(items []BillItemInput) error {
	if len(items) == 0 {
		return apperror.NewFieldError("items", "At least one item is required")
	}
	for i, item := range items {
		if item.MenuItemID == uuid.Nil {
			return apperror.NewFieldError(fmt.Sprintf("items[%d].menu_item_id", i), "Menu item is required")
		}
		if item.Qty <= 0 {
			return apperror.NewFieldError(fmt.Sprintf("items[%d].qty", i), "Quantity must be greater than zero")
		}
		if item.Rate != nil && item.Rate.IsNegative() {
			return apperror.NewFieldError(fmt.Sprintf("items[%d].rate", i), "Rate cannot be negative")
		}
	}
	return nil
}

func validateDiscount(d DiscountInput) error {
	if !d.Type.IsValid() {
		return apperror.NewFieldError("discount_type", "Discount type must be PERCENTAGE or FLAT")
	}
	if d.Value.IsNegative() {
		return apperror.NewFieldError("discount_value", "Discount cannot be negative")
	}
	switch d.Type {
	case enum.DiscountTypePercentage:
		if d.Value.GreaterThan(hundred) {
			return apperror.NewFieldError("discount_value", "Percentage discount must be between 0 and 100")
		}
	case enum.DiscountTypeNone:
		if !d.Value.IsZero() {
			return apperror.NewFieldError("discount_type", "Discount type is required")
		}
	}
	return nil
}

// checkFlatDiscount rejects a flat discount larger than the recomputed gross
func checkFlatDiscount(bill *entity.Bill) error {
	if bill.DiscountType == enum.DiscountTypeFlat && bill.DiscountValue.GreaterThan(bill.GrossAmount) {
		return apperror.NewFieldError("discount_value", "Flat discount cannot exceed the gross amount "+money(bill.GrossAmount))
	}
	return nil
}

func applyDiscount(bill *entity.Bill, d DiscountInput) {
	bill.DiscountType = d.Type
	bill.DiscountValue = d.Value.Round(2)
	bill.DiscountReason = strings.TrimSpace(d.Reason)
	if d.Type == enum.DiscountTypeNone {
		bill.DiscountReason = ""
	}
}

func applyNC(bill *entity.Bill, nc bool, in NCInput) {
	bill.IsNC = nc
	if nc {
		bill.NCName = strings.TrimSpace(in.Name)
		bill.NCPurpose = strings.TrimSpace(in.Purpose)
		return
	}
	bill.NCName = ""
	bill.NCPurpose = ""
}

// --- after-commit side effects ---

func (s *BillingService) afterKOT(ctx context.Context, bill *entity.Bill, kot *entity.KOT) {
	items := make([]entity.KOTTicketLine, 0, len(kot.Details))
	for _, d := range kot.Details {
		items = append(items, entity.KOTTicketLine{Name: d.ItemName, Qty: d.Qty, Instructions: d.Instructions})
	}
	s.publish(bill, ws.EventKOTCreated, &BillEvent{KOTNo: kot.No, Items: items})

	if s.printer == nil {
		return
	}
	billID, no := bill.ID, kot.No
	s.printer.Go(ctx, func(ctx context.Context) {
		if _, err := s.printer.PrintKOT(ctx, billID, no); err != nil {
			log.Printf("billing: print KOT %d of bill %s: %v", no, billID, err)
		}
	})
}

func (s *BillingService) afterReverseKOT(ctx context.Context, bill *entity.Bill, revNo int) {
	s.publish(bill, ws.EventKOTReversed, &BillEvent{KOTNo: revNo})

	if s.printer == nil {
		return
	}
	billID := bill.ID
	s.printer.Go(ctx, func(ctx context.Context) {
		if _, err := s.printer.PrintReverseKOT(ctx, billID, revNo); err != nil {
			log.Printf("billing: print reverse KOT %d of bill %s: %v", revNo, billID, err)
		}
	})
}

func (s *BillingService) afterBilled(ctx context.Context, bill *entity.Bill) {
	if s.printer == nil {
		return
	}
	billID := bill.ID
	s.printer.Go(ctx, func(ctx context.Context) {
		if _, err := s.printer.PrintBill(ctx, billID); err != nil {
			log.Printf("billing: print bill %s: %v", billID, err)
		}
	})
}

func (s *BillingService) publish(bill *entity.Bill, eventType string, event *BillEvent) {
	if s.events == nil {
		return
	}
	if event == nil {
		event = &BillEvent{}
	}
	event.BillID = bill.ID
	event.TableID = bill.TableID
	event.Status = bill.Status
	if bill.BillNo != nil {
		event.BillNo = *bill.BillNo
	}
	if bill.Table != nil {
		event.Table = bill.Table.Name
	}
	s.events.Publish(bill.OutletID, eventType, event)
}
