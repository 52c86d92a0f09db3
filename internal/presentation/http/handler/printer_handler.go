package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/request"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
	billingService *service.BillingService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService, billingService *service.BillingService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService, billingService: billingService}
}

// GetStatus returns the spooler in use and the reachability of each printer.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	outletID, err := scopedOutlet(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if outletID == nil {
		response.Error(c, apperror.NewFieldError("outlet_id", "Outlet is required"))
		return
	}

	status, err := h.printerService.Status(c.Request.Context(), *outletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test ticket to one printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	var req request.TestPrintRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	ticket, err := h.printerService.TestPrint(c.Request.Context(), req.PrinterSettingID)
	if err != nil {
		// The ticket was built but the printer could not be reached
		if ticket != nil && !apperror.IsAppError(err) {
			response.OK(c, "Test ticket generated but printing failed", gin.H{
				"ticket":  ticket,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Test ticket sent to printer", gin.H{"ticket": ticket})
}

// Reprint prints a bill again, or one of its KOTs when kot_no is set.
func (h *PrinterHandler) Reprint(c *gin.Context) {
	var req request.ReprintRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.KOTNo > 0 {
		results, err := h.billingService.ReprintKOT(ctx, req.BillID, req.KOTNo)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "KOT sent to printer", gin.H{"jobs": results})
		return
	}

	ticket, err := h.billingService.ReprintBill(ctx, req.BillID)
	if err != nil {
		if ticket != nil && !apperror.IsAppError(err) {
			response.OK(c, "Bill generated but printing failed", gin.H{
				"ticket":  ticket,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill sent to printer", gin.H{"ticket": ticket})
}
