package handler

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/ws"
)

// KitchenHandler upgrades kitchen display connections
type KitchenHandler struct {
	hub        *ws.Hub
	jwtManager *utils.JWTManager
}

// NewKitchenHandler creates a new kitchen display handler
func NewKitchenHandler(hub *ws.Hub, jwtManager *utils.JWTManager) *KitchenHandler {
	return &KitchenHandler{hub: hub, jwtManager: jwtManager}
}

// Connect joins a display to the room of an outlet. Browsers cannot set
// headers on a websocket handshake, so the access token comes in the query.
//
//	GET /ws/kitchen?outlet_id=<uuid>&token=<access token>
func (h *KitchenHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "token is required")
		return
	}
	claims, err := h.jwtManager.ValidateAccessToken(token)
	if err != nil {
		response.Unauthorized(c, "Invalid or expired token")
		return
	}

	outletID, err := uuid.Parse(c.Query("outlet_id"))
	if err != nil {
		if claims.OutletID == nil {
			response.BadRequest(c, "outlet_id is required")
			return
		}
		outletID = *claims.OutletID
	}
	if !canJoin(claims, outletID) {
		response.Forbidden(c, "Access denied to this outlet")
		return
	}

	if err := ws.Serve(h.hub, outletID, c.Writer, c.Request); err != nil {
		// the upgrader has already written the error response
		log.Printf("ws: upgrade failed for %s: %v", claims.Username, err)
	}
}

func canJoin(claims *utils.JWTClaims, outletID uuid.UUID) bool {
	for _, role := range claims.Roles {
		if enum.IsAdminRole(role) {
			return true
		}
	}
	return claims.OutletID != nil && *claims.OutletID == outletID
}
