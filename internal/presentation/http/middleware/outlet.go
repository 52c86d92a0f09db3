package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/handler"
)

// OutletHeader lets admins pick the outlet they operate on
const OutletHeader = "X-Outlet-ID"

// OutletMiddleware binds the outlet named in X-Outlet-ID to the request.
// Outlet-bound users may only name their own outlet. Requests without the
// header keep the outlet from the token.
func OutletMiddleware(outletRepo repository.MasterRepository[entity.Outlet]) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(OutletHeader)
		if raw == "" {
			c.Next()
			return
		}

		outletID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid "+OutletHeader+" header")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if !infraRepo.CanAccessOutlet(ctx, outletID) {
			response.Forbidden(c, "Access denied to this outlet")
			c.Abort()
			return
		}

		outlet, err := outletRepo.GetByID(ctx, outletID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if outlet == nil || !outlet.IsActive {
			response.NotFound(c, "Outlet not found")
			c.Abort()
			return
		}

		c.Set(handler.CtxOutletID, outlet.ID)
		c.Request = c.Request.WithContext(infraRepo.WithOutlet(ctx, outlet.ID))
		c.Next()
	}
}

// RequireOutlet ensures the request acts on a concrete outlet
func RequireOutlet() gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler.GetOutletID(c) == nil {
			response.BadRequest(c, "Outlet context required; send "+OutletHeader)
			c.Abort()
			return
		}
		c.Next()
	}
}
