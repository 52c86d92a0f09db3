package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/request"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/oauth"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	google      *oauth.GoogleOAuthService
}

// NewAuthHandler creates a new auth handler. google may be nil.
func NewAuthHandler(authService *service.AuthService, google *oauth.GoogleOAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, google: google}
}

func tokenResponse(out *service.LoginOutput) gin.H {
	return gin.H{
		"user":          out.User,
		"access_token":  out.AccessToken,
		"refresh_token": out.RefreshToken,
		"token_type":    "Bearer",
	}
}

// Login handles user login
// @Summary User Login
// @Description Authenticate with a username or email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenResponse(output))
}

// RefreshToken handles token refresh
// @Summary Refresh Token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", tokenResponse(output))
}

// GoogleAuth redirects the browser to the Google consent page
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state, err := oauth.NewState()
	if err != nil {
		response.Error(c, err)
		return
	}
	authURL, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback completes Google sign-in. Browsers are sent back to the
// frontend with the tokens in the URL fragment; without a frontend URL the
// tokens are returned as JSON.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, _ := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	if state == "" || state != c.Query("state") {
		h.googleFailed(c, "invalid_state", http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		h.googleFailed(c, errParam, http.StatusUnauthorized, "Google sign-in was cancelled")
		return
	}

	output, err := h.authService.GoogleLogin(c.Request.Context(), c.Query("code"))
	if err != nil {
		if h.google != nil && h.google.FrontendErrorURL() != "" {
			h.googleFailed(c, "sign_in_failed", http.StatusUnauthorized, err.Error())
			return
		}
		response.Error(c, err)
		return
	}

	if h.google == nil || h.google.FrontendSuccessURL() == "" {
		response.OK(c, "Login successful", tokenResponse(output))
		return
	}
	fragment := url.Values{}
	fragment.Set("access_token", output.AccessToken)
	fragment.Set("refresh_token", output.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, h.google.FrontendSuccessURL()+"#"+fragment.Encode())
}

func (h *AuthHandler) googleFailed(c *gin.Context, code string, status int, message string) {
	if h.google == nil || h.google.FrontendErrorURL() == "" {
		response.ErrorWithCode(c, status, message)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.google.FrontendErrorURL()+"?error="+url.QueryEscape(code))
}

// Me returns the signed-in user with roles and permissions
// @Summary Current User
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetCurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", gin.H{
		"user":        user,
		"permissions": GetUserPermissions(c),
	})
}

// ChangePassword handles password change
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req request.ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), &service.ChangePasswordInput{
		UserID:          GetUserID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed successfully", nil)
}

// VerifyPassword checks a supervisor's password and returns a short-lived
// approval token for an elevated action such as reversing a bill
// @Summary Verify Supervisor Password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.VerifyPasswordRequest true "Supervisor credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /auth/verify-password [post]
func (h *AuthHandler) VerifyPassword(c *gin.Context) {
	var req request.VerifyPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.authService.VerifyPassword(c.Request.Context(), &service.VerifyPasswordInput{
		Login:    req.Login,
		Password: req.Password,
		Purpose:  req.Purpose,
		BillID:   req.BillID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password verified", output)
}

// Logout is a no-op for stateless JWTs; clients drop their tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, "Logged out successfully", nil)
}
