package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/printer"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	ticketDateLayout = "02-01-2006 15:04"
	printTimeout     = 30 * time.Second
)

// PrinterService formats KOT and bill tickets and hands them to the spooler.
type PrinterService struct {
	spooler     printer.Spooler
	settingRepo repository.PrinterSettingRepository
	billRepo    repository.BillRepository
	outletRepo  repository.MasterRepository[entity.Outlet]
	userRepo    repository.UserRepository
	paperWidth  int

	wg sync.WaitGroup
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	spooler printer.Spooler,
	settingRepo repository.PrinterSettingRepository,
	billRepo repository.BillRepository,
	outletRepo repository.MasterRepository[entity.Outlet],
	userRepo repository.UserRepository,
	paperWidth int,
) *PrinterService {
	if paperWidth <= 0 {
		paperWidth = 32
	}
	return &PrinterService{
		spooler:     spooler,
		settingRepo: settingRepo,
		billRepo:    billRepo,
		outletRepo:  outletRepo,
		userRepo:    userRepo,
		paperWidth:  paperWidth,
	}
}

// PrintResult reports one job handed to the spooler.
type PrintResult struct {
	Printer string `json:"printer"`
	Lines   int    `json:"lines"`
	Error   string `json:"error,omitempty"`
}

// PrinterStatus is the reachability of one configured printer.
type PrinterStatus struct {
	ID         uuid.UUID              `json:"id"`
	Name       string                 `json:"name"`
	Purpose    enum.PrinterPurpose    `json:"purpose"`
	Connection enum.PrinterConnection `json:"connection"`
	Online     bool                   `json:"online"`
}

// SpoolerStatus returns the spooler in use and the printers of an outlet.
type SpoolerStatus struct {
	Spooler  string          `json:"spooler"`
	Printers []PrinterStatus `json:"printers"`
}

// Go runs fn in the background with a context detached from the request.
// Print failures must never fail the operation that produced the ticket.
func (s *PrinterService) Go(ctx context.Context, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), printTimeout)
		defer cancel()
		fn(bg)
	}()
}

// Wait blocks until background print jobs finish.
func (s *PrinterService) Wait() {
	s.wg.Wait()
}

// ResolvePrinter picks the most specific enabled setting matching the
// department and kitchen category. Ties go to the earliest setting.
func ResolvePrinter(settings []entity.PrinterSetting, departmentID, categoryID *uuid.UUID) *entity.PrinterSetting {
	var best *entity.PrinterSetting
	for i := range settings {
		st := &settings[i]
		if !st.Enabled {
			continue
		}
		if st.DepartmentID != nil && (departmentID == nil || *st.DepartmentID != *departmentID) {
			continue
		}
		if st.KitchenCategoryID != nil && (categoryID == nil || *st.KitchenCategoryID != *categoryID) {
			continue
		}
		if best == nil || st.Specificity() > best.Specificity() {
			best = st
		}
	}
	return best
}

type kotRoute struct {
	setting *entity.PrinterSetting
	lines   []entity.KOTTicketLine
}

// routeKOTLines groups lines by the printer their kitchen category resolves to.
// Lines without a printer are returned separately.
func routeKOTLines(settings []entity.PrinterSetting, departmentID *uuid.UUID, details []entity.BillDetail, qty func(d *entity.BillDetail) int) ([]*kotRoute, int) {
	var routes []*kotRoute
	byID := make(map[uuid.UUID]*kotRoute)
	unrouted := 0

	for i := range details {
		d := &details[i]
		n := qty(d)
		if n <= 0 {
			continue
		}
		st := ResolvePrinter(settings, departmentID, d.KitchenCategoryID)
		if st == nil {
			unrouted++
			continue
		}
		route, ok := byID[st.ID]
		if !ok {
			route = &kotRoute{setting: st}
			byID[st.ID] = route
			routes = append(routes, route)
		}
		route.lines = append(route.lines, entity.KOTTicketLine{
			Name:         d.ItemName,
			Qty:          n,
			Instructions: d.Instructions,
		})
	}
	return routes, unrouted
}

// PrintKOT prints a KOT on every kitchen printer its lines route to and
// records the outcome on the KOT.
func (s *PrinterService) PrintKOT(ctx context.Context, billID uuid.UUID, kotNo int) ([]PrintResult, error) {
	bill, err := s.billRepo.GetWithDetails(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	kot, err := s.billRepo.GetKOT(ctx, billID, kotNo)
	if err != nil {
		return nil, err
	}
	if kot == nil {
		return nil, apperror.NewNotFoundError("KOT")
	}

	settings, err := s.settingRepo.ListEnabled(ctx, bill.OutletID, enum.PrinterPurposeKOT)
	if err != nil {
		return nil, err
	}

	routes, unrouted := routeKOTLines(settings, bill.DepartmentID, kot.Details, func(d *entity.BillDetail) int { return d.Qty })
	base := s.kotTicket(ctx, bill, kot.CreatedBy, kot.No, false, kot.CreatedAt)
	results, failures := s.submitKOT(ctx, enum.PrinterPurposeKOT, printer.JobKOT, bill, base, routes)

	if unrouted > 0 {
		log.Printf("printer: KOT %d of bill %s has %d line(s) without a KOT printer", kot.No, bill.ID, unrouted)
		failures = append(failures, fmt.Sprintf("no printer for %d line(s)", unrouted))
	}

	if err := s.billRepo.MarkKOTPrinted(ctx, kot.ID, truncateError(strings.Join(failures, "; "))); err != nil {
		log.Printf("printer: failed to record print state of KOT %s: %v", kot.ID, err)
	}
	return results, nil
}

// PrintReverseKOT prints the cancellation ticket of a reverse KOT.
func (s *PrinterService) PrintReverseKOT(ctx context.Context, billID uuid.UUID, revKOTNo int) ([]PrintResult, error) {
	bill, err := s.billRepo.GetWithDetails(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	rows, err := s.billRepo.GetReversals(ctx, billID, revKOTNo)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NewNotFoundError("Reverse KOT")
	}

	// Reversals carry no kitchen category; route them like their original lines
	detailByID := make(map[uuid.UUID]*entity.BillDetail, len(bill.Details))
	for i := range bill.Details {
		detailByID[bill.Details[i].ID] = &bill.Details[i]
	}
	cancelled := make([]entity.BillDetail, 0, len(rows))
	for _, row := range rows {
		line := entity.BillDetail{ItemName: row.ItemName, Qty: row.Qty}
		if d, ok := detailByID[row.BillDetailID]; ok {
			line.KitchenCategoryID = d.KitchenCategoryID
		}
		if row.Reason != "" {
			line.Instructions = "Reason: " + row.Reason
		}
		cancelled = append(cancelled, line)
	}

	settings, err := s.settingRepo.ListEnabled(ctx, bill.OutletID, enum.PrinterPurposeKOT)
	if err != nil {
		return nil, err
	}
	routes, unrouted := routeKOTLines(settings, bill.DepartmentID, cancelled, func(d *entity.BillDetail) int { return d.Qty })
	if unrouted > 0 {
		log.Printf("printer: reverse KOT %d of bill %s has %d line(s) without a KOT printer", revKOTNo, bill.ID, unrouted)
	}

	base := s.kotTicket(ctx, bill, rows[0].CreatedBy, revKOTNo, true, rows[0].CreatedAt)
	results, _ := s.submitKOT(ctx, enum.PrinterPurposeKOT, printer.JobReverseKOT, bill, base, routes)
	return results, nil
}

func (s *PrinterService) kotTicket(ctx context.Context, bill *entity.Bill, waiterID uuid.UUID, no int, reverse bool, at time.Time) entity.KOTTicket {
	ticket := entity.KOTTicket{
		OrderType: string(bill.OrderType),
		KOTNo:     no,
		Reverse:   reverse,
		Pax:       bill.Pax,
		Date:      at.Format(ticketDateLayout),
		Waiter:    s.userName(ctx, waiterID),
	}
	if outlet, err := s.outletRepo.GetByID(ctx, bill.OutletID); err == nil && outlet != nil {
		ticket.OutletName = outlet.Name
	}
	if bill.Table != nil {
		ticket.Table = bill.Table.Name
	}
	return ticket
}

func (s *PrinterService) submitKOT(ctx context.Context, purpose enum.PrinterPurpose, kind string, bill *entity.Bill, base entity.KOTTicket, routes []*kotRoute) ([]PrintResult, []string) {
	results := make([]PrintResult, 0, len(routes))
	var failures []string
	for _, route := range routes {
		ticket := base
		ticket.Kitchen = route.setting.Name
		ticket.Lines = route.lines

		width := s.width(route.setting)
		job := s.newJob(kind, bill.OutletID, fmt.Sprintf("%s/%s-%d", bill.ID, purpose, base.KOTNo), route.setting, ticket, FormatKOT(&ticket, width))
		result := PrintResult{Printer: route.setting.Name, Lines: len(route.lines)}
		if err := s.spooler.Submit(ctx, job); err != nil {
			log.Printf("printer: %s job %s on %s failed: %v", kind, job.Reference, route.setting.Name, err)
			result.Error = err.Error()
			failures = append(failures, route.setting.Name+": "+err.Error())
		}
		results = append(results, result)
	}
	return results, failures
}

// BuildBillTicket composes the printable bill of a bill loaded with details
// and settlements.
func (s *PrinterService) BuildBillTicket(ctx context.Context, bill *entity.Bill) *entity.BillTicket {
	ticket := &entity.BillTicket{
		Pax:      bill.Pax,
		Customer: bill.CustomerName,
		Gross:    money(bill.GrossAmount),
		Net:      money(bill.NetAmount),
		NC:       bill.IsNC,
		Date:     time.Now().Format(ticketDateLayout),
	}
	if bill.BillNo != nil {
		ticket.BillNo = *bill.BillNo
	}
	if bill.BilledAt != nil {
		ticket.Date = bill.BilledAt.Format(ticketDateLayout)
	}
	if bill.Table != nil {
		ticket.Table = bill.Table.Name
	}
	if bill.BilledBy != nil {
		ticket.Cashier = s.userName(ctx, *bill.BilledBy)
	}
	if outlet, err := s.outletRepo.GetByID(ctx, bill.OutletID); err == nil && outlet != nil {
		ticket.Header = entity.TicketHeader{
			OutletName: outlet.Name,
			Address:    outlet.Address,
			Phone:      outlet.Phone,
			GSTIN:      outlet.GSTIN,
		}
		ticket.Footer = outlet.FooterNote
	}

	ticket.Lines = billTicketLines(bill.Details)
	if bill.DiscountAmount.IsPositive() {
		ticket.Discount = money(bill.DiscountAmount)
	}
	for _, tax := range []struct {
		label  string
		rate   decimal.Decimal
		amount decimal.Decimal
	}{
		{"CGST", bill.CGSTRate, bill.CGSTAmount},
		{"SGST", bill.SGSTRate, bill.SGSTAmount},
		{"IGST", bill.IGSTRate, bill.IGSTAmount},
		{"CESS", bill.CESSRate, bill.CESSAmount},
	} {
		if tax.amount.IsZero() {
			continue
		}
		ticket.Taxes = append(ticket.Taxes, entity.BillTicketTax{
			Label:  fmt.Sprintf("%s @%s%%", tax.label, tax.rate.String()),
			Amount: money(tax.amount),
		})
	}
	if !bill.RoundOff.IsZero() {
		ticket.RoundOff = money(bill.RoundOff)
	}
	for _, st := range bill.Settlements {
		if st.Superseded {
			continue
		}
		ticket.Payments = append(ticket.Payments, entity.BillTicketTax{Label: st.PaymentMode, Amount: money(st.Amount)})
	}
	return ticket
}

// billTicketLines merges lines of the same item and rate across KOTs
func billTicketLines(details []entity.BillDetail) []entity.BillTicketLine {
	type key struct {
		item uuid.UUID
		rate string
		nc   bool
	}
	type agg struct {
		name   string
		qty    int
		rate   decimal.Decimal
		amount decimal.Decimal
		nc     bool
	}
	var order []key
	lines := make(map[key]*agg)
	for i := range details {
		d := &details[i]
		if d.ActiveQty() <= 0 {
			continue
		}
		k := key{item: d.MenuItemID, rate: d.Rate.String(), nc: d.IsNC}
		a, ok := lines[k]
		if !ok {
			a = &agg{name: d.ItemName, rate: d.Rate, nc: d.IsNC}
			lines[k] = a
			order = append(order, k)
		}
		a.qty += d.ActiveQty()
		if !d.IsNC {
			a.amount = a.amount.Add(d.Rate.Mul(decimal.NewFromInt(int64(d.ActiveQty()))))
		}
	}

	result := make([]entity.BillTicketLine, 0, len(order))
	for _, k := range order {
		a := lines[k]
		name := a.name
		if a.nc {
			name += " (NC)"
		}
		result = append(result, entity.BillTicketLine{
			Name:   name,
			Qty:    a.qty,
			Rate:   money(a.rate),
			Amount: money(a.amount),
		})
	}
	return result
}

// PrintBill prints the bill on the outlet's bill printer. The ticket is
// returned even when printing fails.
func (s *PrinterService) PrintBill(ctx context.Context, billID uuid.UUID) (*entity.BillTicket, error) {
	bill, err := s.billRepo.GetWithDetails(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	ticket := s.BuildBillTicket(ctx, bill)

	settings, err := s.settingRepo.ListEnabled(ctx, bill.OutletID, enum.PrinterPurposeBill)
	if err != nil {
		return ticket, err
	}
	setting := ResolvePrinter(settings, bill.DepartmentID, nil)
	if setting == nil {
		return ticket, apperror.NewUnprocessableError("No bill printer configured for this outlet")
	}

	job := s.newJob(printer.JobBill, bill.OutletID, ticket.BillNo, setting, ticket, FormatBill(ticket, s.width(setting)))
	if err := s.spooler.Submit(ctx, job); err != nil {
		log.Printf("printer: bill %s on %s failed: %v", ticket.BillNo, setting.Name, err)
		return ticket, fmt.Errorf("failed to print bill: %w", err)
	}
	return ticket, nil
}

// TestPrint sends a sample ticket to one configured printer.
func (s *PrinterService) TestPrint(ctx context.Context, settingID uuid.UUID) (*entity.KOTTicket, error) {
	setting, err := s.settingRepo.GetByID(ctx, settingID)
	if err != nil {
		return nil, err
	}
	if setting == nil || !infraRepo.CanAccessOutlet(ctx, setting.OutletID) {
		return nil, apperror.NewNotFoundError("Printer setting")
	}

	ticket := &entity.KOTTicket{
		OutletName: "PRINTER TEST",
		OrderType:  string(enum.OrderTypeDineIn),
		Kitchen:    setting.Name,
		Date:       time.Now().Format(ticketDateLayout),
		Lines: []entity.KOTTicketLine{
			{Name: "Test Item 1", Qty: 1},
			{Name: "Test Item 2 with a long name that wraps", Qty: 2, Instructions: "less spicy"},
		},
	}
	job := s.newJob(printer.JobTest, setting.OutletID, "test", setting, ticket, FormatKOT(ticket, s.width(setting)))
	if err := s.spooler.Submit(ctx, job); err != nil {
		return ticket, fmt.Errorf("test print failed: %w", err)
	}
	return ticket, nil
}

// Status checks every enabled printer of an outlet concurrently.
func (s *PrinterService) Status(ctx context.Context, outletID uuid.UUID) (*SpoolerStatus, error) {
	if !infraRepo.CanAccessOutlet(ctx, outletID) {
		return nil, apperror.NewNotFoundError("Outlet")
	}

	var settings []entity.PrinterSetting
	for _, purpose := range []enum.PrinterPurpose{enum.PrinterPurposeKOT, enum.PrinterPurposeBill} {
		rows, err := s.settingRepo.ListEnabled(ctx, outletID, purpose)
		if err != nil {
			return nil, err
		}
		settings = append(settings, rows...)
	}

	statuses := make([]PrinterStatus, len(settings))
	g, gctx := errgroup.WithContext(ctx)
	for i := range settings {
		i := i
		st := settings[i]
		statuses[i] = PrinterStatus{ID: st.ID, Name: st.Name, Purpose: st.Purpose, Connection: st.Connection}
		g.Go(func() error {
			p, err := printer.NewPrinter(string(st.Connection), st.USBPath, st.Address)
			if err != nil {
				return nil
			}
			statuses[i].Online = p.Online(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(statuses, func(a, b int) bool { return statuses[a].Purpose < statuses[b].Purpose })
	return &SpoolerStatus{Spooler: s.spooler.Name(), Printers: statuses}, nil
}

func (s *PrinterService) newJob(kind string, outletID uuid.UUID, reference string, setting *entity.PrinterSetting, ticket interface{}, data []byte) *printer.Job {
	return &printer.Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		OutletID:  outletID.String(),
		Reference: reference,
		Target: printer.Target{
			Name:       setting.Name,
			Connection: string(setting.Connection),
			Address:    setting.Address,
			USBPath:    setting.USBPath,
			Copies:     setting.Copies,
		},
		Ticket:    ticket,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

func (s *PrinterService) width(setting *entity.PrinterSetting) int {
	if setting != nil && setting.PaperWidth > 0 {
		return setting.PaperWidth
	}
	return s.paperWidth
}

func (s *PrinterService) userName(ctx context.Context, id uuid.UUID) string {
	if s.userRepo == nil || id == uuid.Nil {
		return ""
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil || user == nil {
		return ""
	}
	return user.FullName
}

// FormatKOT renders a kitchen ticket as ESC/POS bytes.
func FormatKOT(t *entity.KOTTicket, width int) []byte {
	doc := printer.NewDocument(width).Init()

	title := "KOT"
	if t.Reverse {
		title = "CANCELLED KOT"
	}
	doc.SetAlign(printer.AlignCenter)
	if t.OutletName != "" {
		doc.SetBold(true).Text(t.OutletName).SetBold(false)
	}
	doc.Title(fmt.Sprintf("%s #%d", title, t.KOTNo), printer.FontDouble)
	if t.Kitchen != "" {
		doc.Text(t.Kitchen)
	}
	doc.SetAlign(printer.AlignLeft).Separator('-')

	if t.Table != "" {
		doc.KeyValue("Table:", t.Table)
	} else {
		doc.KeyValue("Order:", t.OrderType)
	}
	if t.Pax > 0 {
		doc.KeyValue("Pax:", fmt.Sprintf("%d", t.Pax))
	}
	if t.Waiter != "" {
		doc.KeyValue("Waiter:", t.Waiter)
	}
	doc.KeyValue("Date:", t.Date).Separator('-')

	doc.SetBold(true).Text("Qty  Item").SetBold(false)
	for _, line := range t.Lines {
		doc.SetFontSize(printer.FontTall).KOTLine(line.Qty, line.Name).SetFontSize(printer.FontNormal)
		if line.Instructions != "" {
			doc.Text("     * " + line.Instructions)
		}
	}
	doc.Separator('-')

	if t.Reverse {
		doc.Beep(2)
	}
	return doc.FeedLines(3).Cut().Bytes()
}

// FormatBill renders a guest bill as ESC/POS bytes.
func FormatBill(t *entity.BillTicket, width int) []byte {
	doc := printer.NewDocument(width).Init()

	// Header
	doc.SetAlign(printer.AlignCenter).Title(t.Header.OutletName, printer.FontDouble)
	if t.Header.Address != "" {
		doc.Text(t.Header.Address)
	}
	if t.Header.Phone != "" {
		doc.Text(t.Header.Phone)
	}
	if t.Header.GSTIN != "" {
		doc.TextF("GSTIN: %s", t.Header.GSTIN)
	}
	doc.SetAlign(printer.AlignLeft).Separator('-')

	doc.KeyValue("Bill No:", t.BillNo).KeyValue("Date:", t.Date)
	if t.Table != "" {
		doc.KeyValue("Table:", t.Table)
	}
	if t.Pax > 0 {
		doc.KeyValue("Pax:", fmt.Sprintf("%d", t.Pax))
	}
	if t.Cashier != "" {
		doc.KeyValue("Cashier:", t.Cashier)
	}
	if t.Customer != "" {
		doc.KeyValue("Customer:", t.Customer)
	}
	doc.Separator('-')

	for _, line := range t.Lines {
		doc.BillLine(line.Name, line.Qty, line.Rate, line.Amount)
	}
	doc.Separator('-')

	// Totals
	doc.KeyValue("Gross:", t.Gross)
	if t.Discount != "" {
		doc.KeyValue("Discount:", "-"+t.Discount)
	}
	for _, tax := range t.Taxes {
		doc.KeyValue(tax.Label+":", tax.Amount)
	}
	if t.RoundOff != "" {
		doc.KeyValue("Round off:", t.RoundOff)
	}
	doc.SetBold(true).KeyValue("NET:", t.Net).SetBold(false)
	if t.NC {
		doc.SetAlign(printer.AlignCenter).Text("** NO CHARGE **").SetAlign(printer.AlignLeft)
	}

	if len(t.Payments) > 0 {
		doc.Separator('-')
		for _, p := range t.Payments {
			doc.KeyValue(p.Label+":", p.Amount)
		}
	}
	doc.Separator('-')

	if t.Footer != "" {
		doc.SetAlign(printer.AlignCenter).Text(t.Footer).SetAlign(printer.AlignLeft)
	}
	return doc.FeedLines(3).Cut().Bytes()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func truncateError(s string) string {
	if len(s) > 255 {
		return s[:255]
	}
	return s
}
