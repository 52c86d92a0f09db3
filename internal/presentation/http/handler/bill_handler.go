package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/request"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
)

// ApprovalTokenHeader carries the supervisor approval for a bill reversal
const ApprovalTokenHeader = "X-Approval-Token"

// BillHandler handles the order, KOT and bill workflow
type BillHandler struct {
	billingService *service.BillingService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billingService *service.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

func toBillItems(items []request.BillItemRequest) []service.BillItemInput {
	out := make([]service.BillItemInput, len(items))
	for i, it := range items {
		out[i] = service.BillItemInput{
			MenuItemID:   it.MenuItemID,
			Qty:          it.Qty,
			Rate:         it.Rate,
			IsNC:         it.IsNC,
			Instructions: it.Instructions,
		}
	}
	return out
}

func toPayments(payments []request.PaymentRequest) []service.PaymentInput {
	out := make([]service.PaymentInput, len(payments))
	for i, p := range payments {
		out[i] = service.PaymentInput{
			PaymentModeID: p.PaymentModeID,
			PaymentMode:   p.PaymentMode,
			Amount:        p.Amount,
			Reference:     p.Reference,
		}
	}
	return out
}

func toDiscount(d request.DiscountRequest) service.DiscountInput {
	return service.DiscountInput{Type: d.Type, Value: d.Value, Reason: d.Reason}
}

func (h *BillHandler) createBillInput(c *gin.Context, req *request.CreateBillRequest) service.CreateBillInput {
	outletID := req.OutletID
	if outletID == nil {
		outletID = GetOutletID(c)
	}
	return service.CreateBillInput{
		UserID:       GetUserID(c),
		OutletID:     outletID,
		TableID:      req.TableID,
		DepartmentID: req.DepartmentID,
		OrderType:    req.OrderType,
		Pax:          req.Pax,
		Customer: service.CustomerInput{
			CustomerID: req.Customer.CustomerID,
			Name:       req.Customer.Name,
			Mobile:     req.Customer.Mobile,
			Address:    req.Customer.Address,
		},
		Items: toBillItems(req.Items),
	}
}

// CreateBill opens a bill on a table with its first KOT
// @Summary Create Bill
// @Description Opens a bill with KOT #1. Fails with 409 when the table already has an active bill.
// @Tags bills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param request body request.CreateBillRequest true "Bill"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /TAxnTrnbill [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req request.CreateBillRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	input := h.createBillInput(c, &req)
	result, err := h.billingService.CreateBill(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", result)
}

// CreateKOT punches a KOT on a bill
// @Summary Create KOT
// @Description Appends a KOT to bill_id, to the table's active bill, or opens a new bill.
// @Tags bills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateKOTRequest true "KOT"
// @Success 201 {object} response.APIResponse
// @Router /TAxnTrnbill/kot [post]
func (h *BillHandler) CreateKOT(c *gin.Context) {
	var req request.CreateKOTRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	input := &service.CreateKOTInput{
		CreateBillInput: h.createBillInput(c, &req.CreateBillRequest),
		BillID:          req.BillID,
	}
	if req.Discount != nil {
		d := toDiscount(*req.Discount)
		input.Discount = &d
	}
	if req.NC != nil {
		input.NC = &service.NCInput{Name: req.NC.Name, Purpose: req.NC.Purpose}
	}

	result, err := h.billingService.CreateKOT(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "KOT created successfully", result)
}

// CreateReverseKOT cancels quantities punched on earlier KOTs
// @Summary Reverse KOT
// @Tags bills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ReverseKOTRequest true "Lines to cancel"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /TAxnTrnbill/reverse-kot [post]
func (h *BillHandler) CreateReverseKOT(c *gin.Context) {
	var req request.ReverseKOTRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	lines := make([]service.ReverseLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.ReverseLineInput{
			MenuItemID:   l.MenuItemID,
			KOTNo:        l.KOTNo,
			BillDetailID: l.BillDetailID,
			Qty:          l.Qty,
			Reason:       l.Reason,
		}
	}

	result, err := h.billingService.CreateReverseKOT(c.Request.Context(), &service.ReverseKOTInput{
		BillID:  req.BillID,
		UserID:  GetUserID(c),
		Version: req.Version,
		Reason:  req.Reason,
		Lines:   lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Reverse KOT created successfully", result)
}

// ApplyDiscount applies or clears the bill discount
func (h *BillHandler) ApplyDiscount(c *gin.Context) {
	var req request.ApplyDiscountRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.ApplyDiscount(c.Request.Context(), &service.ApplyDiscountInput{
		BillID:   req.BillID,
		UserID:   GetUserID(c),
		Version:  req.Version,
		Discount: toDiscount(req.DiscountRequest),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount applied successfully", bill)
}

// SetNC toggles the no-charge designation
func (h *BillHandler) SetNC(c *gin.Context) {
	var req request.SetNCRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.SetNC(c.Request.Context(), &service.SetNCInput{
		BillID:  req.BillID,
		UserID:  GetUserID(c),
		Version: req.Version,
		IsNC:    req.IsNC,
		NC:      service.NCInput{Name: req.Name, Purpose: req.Purpose},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "NC updated successfully", bill)
}

// MarkBilled assigns the bill number and prints the bill
// @Summary Mark Billed
// @Tags bills
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bill ID"
// @Success 200 {object} response.APIResponse
// @Router /TAxnTrnbill/{id}/mark-billed [post]
func (h *BillHandler) MarkBilled(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req request.BillVersionRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	}

	bill, err := h.billingService.MarkBilled(c.Request.Context(), id, GetUserID(c), req.Version)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill marked as billed", bill)
}

// Settle records the payments of a bill
// @Summary Settle Bill
// @Description Payments must add up to the net amount. A settled bill cannot be settled again.
// @Tags bills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.SettleRequest true "Payments"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /TAxnTrnbill/settle [post]
func (h *BillHandler) Settle(c *gin.Context) {
	var req request.SettleRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.Settle(c.Request.Context(), &service.SettleInput{
		BillID:   req.BillID,
		UserID:   GetUserID(c),
		Version:  req.Version,
		Payments: toPayments(req.Payments),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill settled successfully", bill)
}

// ReverseBill reverses a bill with a supervisor approval token
// @Summary Reverse Bill
// @Tags bills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param X-Approval-Token header string false "Token from /auth/verify-password"
// @Param request body request.ReverseBillRequest true "Reversal"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /TAxnTrnbill/reverse [post]
func (h *BillHandler) ReverseBill(c *gin.Context) {
	var req request.ReverseBillRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	token := c.GetHeader(ApprovalTokenHeader)
	if token == "" {
		token = req.ApprovalToken
	}

	bill, err := h.billingService.ReverseBill(c.Request.Context(), &service.ReverseBillInput{
		BillID:        req.BillID,
		UserID:        GetUserID(c),
		Version:       req.Version,
		Reason:        req.Reason,
		ApprovalToken: token,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill reversed successfully", bill)
}

// TransferTable moves an active bill to a free table
func (h *BillHandler) TransferTable(c *gin.Context) {
	var req request.TransferTableRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.TransferTable(c.Request.Context(), &service.TransferTableInput{
		BillID:  req.BillID,
		TableID: req.TableID,
		UserID:  GetUserID(c),
		Version: req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Table transferred successfully", bill)
}

// Get returns a bill with its lines, KOTs, reversals and settlements
func (h *BillHandler) Get(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// List returns a page of bills
// @Summary List Bills
// @Tags bills
// @Security BearerAuth
// @Produce json
// @Param outlet_id query string false "Outlet"
// @Param table_id query string false "Table"
// @Param status query string false "Open, Billed, Settled or Reversed"
// @Param from query string false "From date (YYYY-MM-DD or RFC3339)"
// @Param to query string false "To date (YYYY-MM-DD or RFC3339)"
// @Param search query string false "Bill number or customer"
// @Success 200 {object} response.APIResponse
// @Router /TAxnTrnbill [get]
func (h *BillHandler) List(c *gin.Context) {
	filter := repository.BillFilter{Params: paginationParams(c), Search: c.Query("search")}
	var err error
	if filter.OutletID, err = scopedOutlet(c); err != nil {
		response.Error(c, err)
		return
	}
	if filter.TableID, err = queryUUID(c, "table_id"); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := enum.ParseBillStatus(strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:]))
		if !ok {
			response.Error(c, apperror.NewFieldError("status", "Must be Open, Billed, Settled or Reversed"))
			return
		}
		filter.Status = &status
	}
	if filter.From, err = queryTime(c, "from", false); err != nil {
		response.Error(c, err)
		return
	}
	if filter.To, err = queryTime(c, "to", true); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.billingService.ListBills(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", result)
}

// ActiveByTable returns the open or billed bill of a table
func (h *BillHandler) ActiveByTable(c *gin.Context) {
	tableID, err := paramUUID(c, "tableId")
	if err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.ActiveBillForTable(c.Request.Context(), tableID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Active bill retrieved successfully", bill)
}
