package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
)

// TaxHandler exposes tax rate resolution
type TaxHandler struct {
	taxService *service.TaxService
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(taxService *service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// Rates returns the GST rates that apply to an outlet, or to one of its
// departments when department_id is given
// @Summary Resolve Tax Rates
// @Tags tax
// @Security BearerAuth
// @Produce json
// @Param id path string true "Outlet ID"
// @Param department_id query string false "Department ID"
// @Success 200 {object} response.APIResponse
// @Router /outlets/{id}/tax-rates [get]
func (h *TaxHandler) Rates(c *gin.Context) {
	outletID, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if bound := GetOutletID(c); bound != nil && !IsAdmin(c) && *bound != outletID {
		response.Error(c, apperror.NewNotFoundError("Outlet"))
		return
	}
	departmentID, err := queryUUID(c, "department_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if departmentID != nil {
		if err := h.taxService.CheckDepartment(ctx, outletID, *departmentID); err != nil {
			response.Error(c, err)
			return
		}
	}

	rates, err := h.taxService.ResolveRates(ctx, outletID, departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tax rates retrieved", rates)
}
