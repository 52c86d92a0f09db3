package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles getting dashboard statistics
// @Summary Outlet Dashboard
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param outlet_id query string false "Outlet for admins without X-Outlet-ID"
// @Success 200 {object} response.APIResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	outletID, err := scopedOutlet(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if outletID == nil {
		response.BadRequest(c, "outlet_id is required")
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), *outletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}
