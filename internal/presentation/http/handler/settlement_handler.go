package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/request"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
)

// SettlementHandler handles settlement reporting and edits
type SettlementHandler struct {
	settlementService *service.SettlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlementService *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// List returns a page of live settlements
// @Summary List Settlements
// @Tags settlements
// @Security BearerAuth
// @Produce json
// @Param outlet_id query string false "Outlet"
// @Param user_id query string false "Cashier"
// @Param payment_mode query string false "Payment mode name"
// @Param from query string false "From date"
// @Param to query string false "To date"
// @Success 200 {object} response.APIResponse
// @Router /settlements [get]
func (h *SettlementHandler) List(c *gin.Context) {
	filter, err := settlementFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.settlementService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Settlements retrieved successfully", result)
}

// Summary totals settlements by payment mode
func (h *SettlementHandler) Summary(c *gin.Context) {
	filter, err := settlementFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.settlementService.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settlement summary retrieved successfully", summary)
}

// Replace swaps the payments of a settled bill
// @Summary Replace Settlement
// @Description Supersedes the live payments of a settled bill and logs each change.
// @Tags settlements
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ReplaceSettlementRequest true "New payments"
// @Success 200 {object} response.APIResponse
// @Router /settlements/replace [post]
func (h *SettlementHandler) Replace(c *gin.Context) {
	var req request.ReplaceSettlementRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	settlements, err := h.settlementService.Replace(c.Request.Context(), &service.ReplaceSettlementInput{
		BillID:   req.BillID,
		UserID:   GetUserID(c),
		Version:  req.Version,
		Payments: toPayments(req.Payments),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settlement replaced successfully", settlements)
}

// Logs returns the settlement edit history
func (h *SettlementHandler) Logs(c *gin.Context) {
	billID, err := queryUUID(c, "bill_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.settlementService.Logs(c.Request.Context(), billID, paginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Settlement logs retrieved successfully", result)
}

// Export downloads the filtered settlements as xlsx
func (h *SettlementHandler) Export(c *gin.Context) {
	filter, err := settlementFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "settlements-" + time.Now().Format("20060102-1504") + ".xlsx"
	sendWorkbook(c, filename, func(buf *bytes.Buffer) error {
		return h.settlementService.Export(c.Request.Context(), filter, buf)
	})
}
