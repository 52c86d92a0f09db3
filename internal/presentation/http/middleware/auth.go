package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/handler"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
)

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware validates the access token and binds the caller to the
// request. Admins see every outlet; everybody else is scoped to the outlet
// in their token.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		tokenString, ok := BearerToken(c)
		if !ok {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims stores the caller in the gin context and the outlet scope in the
// request context used by services and repositories
func SetClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set(handler.CtxUserID, claims.UserID)
	c.Set(handler.CtxUsername, claims.Username)
	c.Set(handler.CtxRoles, claims.Roles)
	c.Set(handler.CtxPermissions, claims.Permissions)

	ctx := c.Request.Context()
	if claims.OutletID != nil {
		c.Set(handler.CtxOutletID, *claims.OutletID)
		ctx = infraRepo.WithOutlet(ctx, *claims.OutletID)
	}
	for _, role := range claims.Roles {
		if enum.IsAdminRole(role) {
			ctx = infraRepo.WithSkipOutletScope(ctx, true)
			break
		}
	}
	c.Request = c.Request.WithContext(ctx)
}

// RequirePermission allows the request when the caller holds any of the
// given permissions
func RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userPermissions := handler.GetUserPermissions(c)
		if userPermissions == nil {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, held := range userPermissions {
			for _, required := range permissions {
				if held == required {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, "You do not have permission to perform this action")
		c.Abort()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, userRole := range handler.GetUserRoles(c) {
			for _, requiredRole := range roles {
				if userRole == requiredRole {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}
