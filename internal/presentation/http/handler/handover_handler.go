package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/request"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
)

// HandoverHandler handles cashier shift handovers
type HandoverHandler struct {
	handoverService *service.HandoverService
}

// NewHandoverHandler creates a new handover handler
func NewHandoverHandler(handoverService *service.HandoverService) *HandoverHandler {
	return &HandoverHandler{handoverService: handoverService}
}

// Summary totals a shift. user_id defaults to the caller; user_id=all
// summarizes every cashier of the outlet.
// @Summary Handover Summary
// @Tags handover
// @Security BearerAuth
// @Produce json
// @Param outlet_id query string false "Outlet"
// @Param user_id query string false "Cashier, or all"
// @Param from query string false "Shift start; defaults to the previous handover"
// @Param to query string false "Shift end; defaults to now"
// @Success 200 {object} response.APIResponse
// @Router /handover/summary [get]
func (h *HandoverHandler) Summary(c *gin.Context) {
	outletID, err := scopedOutlet(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if outletID == nil {
		response.Error(c, apperror.NewFieldError("outlet_id", "Outlet is required"))
		return
	}

	input := &service.HandoverSummaryInput{OutletID: *outletID}
	if c.Query("user_id") != "all" {
		if input.UserID, err = queryUUID(c, "user_id"); err != nil {
			response.Error(c, err)
			return
		}
		if input.UserID == nil {
			me := GetUserID(c)
			input.UserID = &me
		}
	}
	if input.From, err = queryTime(c, "from", false); err != nil {
		response.Error(c, err)
		return
	}
	if input.To, err = queryTime(c, "to", true); err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.handoverService.Summary(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Handover summary retrieved successfully", summary)
}

// Create records the caller's handover to another user
// @Summary Create Handover
// @Tags handover
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateHandoverRequest true "Handover"
// @Success 201 {object} response.APIResponse
// @Router /handover [post]
func (h *HandoverHandler) Create(c *gin.Context) {
	var req request.CreateHandoverRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	outletID := GetOutletID(c)
	if outletID == nil || (IsAdmin(c) && req.OutletID != nil) {
		outletID = req.OutletID
	}
	if outletID == nil {
		response.Error(c, apperror.NewFieldError("outlet_id", "Outlet is required"))
		return
	}

	denominations := make([]service.DenominationInput, len(req.Denominations))
	for i, d := range req.Denominations {
		denominations[i] = service.DenominationInput{Value: d.Value, Count: d.Count}
	}

	handover, err := h.handoverService.Create(c.Request.Context(), &service.CreateHandoverInput{
		OutletID:      *outletID,
		HandedBy:      GetUserID(c),
		HandedTo:      req.HandedTo,
		From:          req.From,
		To:            req.To,
		Denominations: denominations,
		CountedCash:   req.CountedCash,
		Notes:         req.Notes,
		SendEmail:     req.SendEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Handover recorded successfully", handover)
}

// Get returns one handover
func (h *HandoverHandler) Get(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	handover, err := h.handoverService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Handover retrieved successfully", handover)
}

// List returns a page of handovers
func (h *HandoverHandler) List(c *gin.Context) {
	outletID, err := scopedOutlet(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.handoverService.List(c.Request.Context(), outletID, paginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Handovers retrieved successfully", result)
}

// Export downloads one handover as xlsx
func (h *HandoverHandler) Export(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	sendWorkbook(c, "handover-"+id.String()[:8]+".xlsx", func(buf *bytes.Buffer) error {
		return h.handoverService.Export(c.Request.Context(), id, buf)
	})
}
