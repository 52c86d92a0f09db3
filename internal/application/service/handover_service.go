package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/email"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/export"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// HandoverService builds shift summaries and records cashier handovers
type HandoverService struct {
	handoverRepo    repository.HandoverRepository
	userRepo        repository.UserRepository
	outletRepo      repository.MasterRepository[entity.Outlet]
	paymentModeRepo repository.MasterRepository[entity.PaymentMode]
	emailService    *email.EmailService
	recipients      []string
	now             func() time.Time
}

// NewHandoverService creates a new handover service
func NewHandoverService(
	handoverRepo repository.HandoverRepository,
	userRepo repository.UserRepository,
	outletRepo repository.MasterRepository[entity.Outlet],
	paymentModeRepo repository.MasterRepository[entity.PaymentMode],
	emailService *email.EmailService,
	recipients []string,
) *HandoverService {
	return &HandoverService{
		handoverRepo:    handoverRepo,
		userRepo:        userRepo,
		outletRepo:      outletRepo,
		paymentModeRepo: paymentModeRepo,
		emailService:    emailService,
		recipients:      recipients,
		now:             time.Now,
	}
}

// HandoverSummaryInput selects the shift to summarize. A nil From starts at
// the end of the previous handover, or at midnight when there is none.
type HandoverSummaryInput struct {
	OutletID uuid.UUID
	UserID   *uuid.UUID
	From     *time.Time
	To       *time.Time
}

// HandoverSummary aggregates the bills settled during a shift
type HandoverSummary struct {
	OutletID       uuid.UUID                     `json:"outlet_id"`
	UserID         *uuid.UUID                    `json:"user_id,omitempty"`
	From           time.Time                     `json:"from"`
	To             time.Time                     `json:"to"`
	BillCount      int                           `json:"bill_count"`
	ItemCount      int                           `json:"item_count"`
	NCCount        int                           `json:"nc_count"`
	ReversedCount  int                           `json:"reversed_count"`
	GrossAmount    decimal.Decimal               `json:"gross_amount"`
	DiscountAmount decimal.Decimal               `json:"discount_amount"`
	TaxAmount      decimal.Decimal               `json:"tax_amount"`
	RoundOff       decimal.Decimal               `json:"round_off"`
	NetAmount      decimal.Decimal               `json:"net_amount"`
	ExpectedCash   decimal.Decimal               `json:"expected_cash"`
	Payments       []repository.PaymentModeTotal `json:"payments"`
}

// DenominationInput is one counted note or coin value
type DenominationInput struct {
	Value decimal.Decimal
	Count int
}

// CreateHandoverInput represents the create handover input. The drawer is
// counted from Denominations when given, otherwise CountedCash is used.
type CreateHandoverInput struct {
	OutletID      uuid.UUID
	HandedBy      uuid.UUID
	HandedTo      uuid.UUID
	From          *time.Time
	To            *time.Time
	Denominations []DenominationInput
	CountedCash   *decimal.Decimal
	Notes         string
	SendEmail     bool
}

// Summary aggregates the shift. The four aggregates run concurrently.
func (s *HandoverService) Summary(ctx context.Context, input *HandoverSummaryInput) (*HandoverSummary, error) {
	if !infraRepo.CanAccessOutlet(ctx, input.OutletID) {
		return nil, apperror.NewNotFoundError("Outlet")
	}
	scope, err := s.scope(ctx, input)
	if err != nil {
		return nil, err
	}

	var (
		agg      *repository.BillAggregate
		items    int
		reversed int64
		payments []repository.PaymentModeTotal
		cash     map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		agg, err = s.handoverRepo.AggregateBills(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		items, err = s.handoverRepo.CountItems(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		reversed, err = s.handoverRepo.CountReversed(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.handoverRepo.PaymentTotals(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		cash, err = s.cashModes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &HandoverSummary{
		OutletID:       scope.OutletID,
		UserID:         scope.UserID,
		From:           scope.From,
		To:             scope.To,
		BillCount:      agg.BillCount,
		ItemCount:      items,
		NCCount:        agg.NCCount,
		ReversedCount:  int(reversed),
		GrossAmount:    agg.GrossAmount,
		DiscountAmount: agg.DiscountAmount,
		TaxAmount:      agg.TaxAmount,
		RoundOff:       agg.RoundOff,
		NetAmount:      agg.NetAmount,
		ExpectedCash:   decimal.Zero,
		Payments:       payments,
	}
	if summary.Payments == nil {
		summary.Payments = []repository.PaymentModeTotal{}
	}
	for _, p := range payments {
		if cash[p.PaymentMode] {
			summary.ExpectedCash = summary.ExpectedCash.Add(p.Amount)
		}
	}
	return summary, nil
}

func (s *HandoverService) scope(ctx context.Context, input *HandoverSummaryInput) (repository.HandoverScope, error) {
	scope := repository.HandoverScope{OutletID: input.OutletID, UserID: input.UserID}

	scope.To = s.now()
	if input.To != nil {
		scope.To = *input.To
	}
	switch {
	case input.From != nil:
		scope.From = *input.From
	default:
		last, err := s.handoverRepo.Latest(ctx, input.OutletID, input.UserID)
		if err != nil {
			return scope, err
		}
		if last != nil && last.PeriodEnd.Before(scope.To) {
			scope.From = last.PeriodEnd
		} else {
			y, m, d := scope.To.Date()
			scope.From = time.Date(y, m, d, 0, 0, 0, 0, scope.To.Location())
		}
	}
	if !scope.From.Before(scope.To) {
		return scope, apperror.NewFieldError("from", "Period start must be before its end")
	}
	return scope, nil
}

func (s *HandoverService) cashModes(ctx context.Context) (map[string]bool, error) {
	modes, _, err := s.paymentModeRepo.List(ctx, repository.MasterFilter{
		Filters: map[string]interface{}{"is_cash": true},
	})
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(modes))
	for _, m := range modes {
		names[m.Name] = true
	}
	return names, nil
}

// Create snapshots the handing-over cashier's shift. Handovers are immutable.
func (s *HandoverService) Create(ctx context.Context, input *CreateHandoverInput) (*entity.Handover, error) {
	if input.HandedTo == input.HandedBy {
		return nil, apperror.NewFieldError("handed_to", "Cannot hand over to yourself")
	}
	to, err := s.userRepo.GetByID(ctx, input.HandedTo)
	if err != nil {
		return nil, err
	}
	if to == nil || !to.IsActive {
		return nil, apperror.NewFieldError("handed_to", "User not found")
	}
	if to.OutletID != nil && *to.OutletID != input.OutletID {
		return nil, apperror.NewFieldError("handed_to", "User belongs to another outlet")
	}

	summary, err := s.Summary(ctx, &HandoverSummaryInput{
		OutletID: input.OutletID,
		UserID:   &input.HandedBy,
		From:     input.From,
		To:       input.To,
	})
	if err != nil {
		return nil, err
	}

	handover := &entity.Handover{
		OutletID:       input.OutletID,
		HandedBy:       input.HandedBy,
		HandedTo:       input.HandedTo,
		PeriodStart:    summary.From,
		PeriodEnd:      summary.To,
		BillCount:      summary.BillCount,
		ItemCount:      summary.ItemCount,
		NCCount:        summary.NCCount,
		ReversedCount:  summary.ReversedCount,
		GrossAmount:    summary.GrossAmount,
		DiscountAmount: summary.DiscountAmount,
		TaxAmount:      summary.TaxAmount,
		RoundOff:       summary.RoundOff,
		NetAmount:      summary.NetAmount,
		ExpectedCash:   summary.ExpectedCash,
		CountedCash:    summary.ExpectedCash,
		CashVariance:   decimal.Zero,
		Notes:          strings.TrimSpace(input.Notes),
	}
	for _, p := range summary.Payments {
		handover.Payments = append(handover.Payments, entity.HandoverPayment{
			PaymentMode: p.PaymentMode,
			Count:       p.Count,
			Amount:      p.Amount,
		})
	}

	switch {
	case len(input.Denominations) > 0:
		counted := decimal.Zero
		for i, d := range input.Denominations {
			if !d.Value.IsPositive() || d.Count < 0 {
				return nil, apperror.NewFieldError(fmt.Sprintf("denominations[%d]", i), "Denomination must be positive and count not negative")
			}
			amount := d.Value.Mul(decimal.NewFromInt(int64(d.Count))).Round(2)
			counted = counted.Add(amount)
			handover.Denominations = append(handover.Denominations, entity.HandoverDenomination{
				Denomination: d.Value,
				Count:        d.Count,
				Amount:       amount,
			})
		}
		handover.CountedCash = counted
	case input.CountedCash != nil:
		if input.CountedCash.IsNegative() {
			return nil, apperror.NewFieldError("counted_cash", "Counted cash cannot be negative")
		}
		handover.CountedCash = input.CountedCash.Round(2)
	}
	handover.CashVariance = handover.CountedCash.Sub(handover.ExpectedCash)

	if err := s.handoverRepo.Create(ctx, handover); err != nil {
		return nil, err
	}

	if input.SendEmail {
		s.sendReport(ctx, handover, to)
	}
	return handover, nil
}

// sendReport mails the handover with its workbook attached. Failures are logged.
func (s *HandoverService) sendReport(ctx context.Context, handover *entity.Handover, to *entity.User) {
	if s.emailService == nil || !s.emailService.IsConfigured() {
		log.Printf("handover: email not configured, report %s not sent", handover.ID)
		return
	}
	recipients := append([]string{}, s.recipients...)
	if to.Email != nil && *to.Email != "" {
		recipients = append(recipients, *to.Email)
	}
	if len(recipients) == 0 {
		return
	}

	report := s.report(ctx, handover)
	var buf bytes.Buffer
	var attachment *email.Attachment
	if err := s.writeWorkbook(&buf, handover, report); err != nil {
		log.Printf("handover: failed to build workbook for %s: %v", handover.ID, err)
	} else {
		attachment = &email.Attachment{
			Filename:    fmt.Sprintf("handover-%s.xlsx", handover.PeriodEnd.Format("20060102-1504")),
			ContentType: export.ContentType,
			Data:        buf.Bytes(),
		}
	}
	if err := s.emailService.SendHandoverReport(recipients, report, attachment); err != nil {
		log.Printf("handover: failed to email report %s: %v", handover.ID, err)
	}
}

func (s *HandoverService) report(ctx context.Context, h *entity.Handover) email.HandoverReport {
	report := email.HandoverReport{
		HandedBy: s.userName(ctx, h.HandedBy),
		HandedTo: s.userName(ctx, h.HandedTo),
		Period:   h.PeriodStart.Format(ticketDateLayout) + " - " + h.PeriodEnd.Format(ticketDateLayout),
		Totals: []email.HandoverLine{
			{Label: "Bills", Value: fmt.Sprintf("%d", h.BillCount)},
			{Label: "Items", Value: fmt.Sprintf("%d", h.ItemCount)},
			{Label: "NC bills", Value: fmt.Sprintf("%d", h.NCCount)},
			{Label: "Reversed bills", Value: fmt.Sprintf("%d", h.ReversedCount)},
			{Label: "Gross", Value: money(h.GrossAmount)},
			{Label: "Discount", Value: money(h.DiscountAmount)},
			{Label: "Tax", Value: money(h.TaxAmount)},
			{Label: "Round off", Value: money(h.RoundOff)},
			{Label: "Net", Value: money(h.NetAmount)},
			{Label: "Expected cash", Value: money(h.ExpectedCash)},
			{Label: "Counted cash", Value: money(h.CountedCash)},
		},
		Variance: money(h.CashVariance),
	}
	if outlet, err := s.outletRepo.GetByID(ctx, h.OutletID); err == nil && outlet != nil {
		report.OutletName = outlet.Name
	}
	for _, p := range h.Payments {
		report.Payments = append(report.Payments, email.HandoverLine{
			Label: fmt.Sprintf("%s (%d)", p.PaymentMode, p.Count),
			Value: money(p.Amount),
		})
	}
	return report
}

// Get returns one handover with its payments and denominations
func (s *HandoverService) Get(ctx context.Context, id uuid.UUID) (*entity.Handover, error) {
	handover, err := s.handoverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if handover == nil || !infraRepo.CanAccessOutlet(ctx, handover.OutletID) {
		return nil, apperror.NewNotFoundError("Handover")
	}
	return handover, nil
}

// List returns a page of handovers visible to the caller
func (s *HandoverService) List(ctx context.Context, outletID *uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Handover], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	handovers, total, err := s.handoverRepo.List(ctx, outletID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(handovers, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// Export writes one handover as an xlsx workbook
func (s *HandoverService) Export(ctx context.Context, id uuid.UUID, w io.Writer) error {
	handover, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.writeWorkbook(w, handover, s.report(ctx, handover))
}

func (s *HandoverService) writeWorkbook(w io.Writer, h *entity.Handover, report email.HandoverReport) error {
	summary := &export.Sheet{Name: "Summary", Headers: []string{"Field", "Value"}}
	summary.AddRow("Outlet", report.OutletName)
	summary.AddRow("Handed by", report.HandedBy)
	summary.AddRow("Handed to", report.HandedTo)
	summary.AddRow("Period", report.Period)
	summary.AddRow("Bills", h.BillCount)
	summary.AddRow("Items", h.ItemCount)
	summary.AddRow("NC bills", h.NCCount)
	summary.AddRow("Reversed bills", h.ReversedCount)
	summary.AddRow("Gross", h.GrossAmount)
	summary.AddRow("Discount", h.DiscountAmount)
	summary.AddRow("Tax", h.TaxAmount)
	summary.AddRow("Round off", h.RoundOff)
	summary.AddRow("Net", h.NetAmount)
	summary.AddRow("Expected cash", h.ExpectedCash)
	summary.AddRow("Counted cash", h.CountedCash)
	summary.AddRow("Variance", h.CashVariance)
	if h.Notes != "" {
		summary.AddRow("Notes", h.Notes)
	}

	payments := &export.Sheet{Name: "Payments", Headers: []string{"Payment Mode", "Count", "Amount"}}
	for _, p := range h.Payments {
		payments.AddRow(p.PaymentMode, p.Count, p.Amount)
	}

	sheets := []*export.Sheet{summary, payments}
	if len(h.Denominations) > 0 {
		cash := &export.Sheet{Name: "Cash Count", Headers: []string{"Denomination", "Count", "Amount"}}
		for _, d := range h.Denominations {
			cash.AddRow(d.Denomination, d.Count, d.Amount)
		}
		sheets = append(sheets, cash)
	}
	return export.Write(w, sheets...)
}

func (s *HandoverService) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil || user == nil {
		return id.String()
	}
	return user.FullName
}
