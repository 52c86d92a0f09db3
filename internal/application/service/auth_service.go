package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/oauth"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	google     *oauth.GoogleOAuthService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	google *oauth.GoogleOAuthService,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		google:     google,
	}
}

// LoginInput represents the login input. Login accepts a username or an email.
type LoginInput struct {
	Login    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.findByLogin(ctx, input.Login)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	return s.issueTokens(ctx, user.ID, true)
}

func (s *AuthService) findByLogin(ctx context.Context, login string) (*entity.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	}
	return s.userRepo.GetByUsername(ctx, login)
}

// issueTokens reloads the user with roles and signs a token pair
func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID, touch bool) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.OutletID, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	if touch {
		_ = s.userRepo.TouchLastLogin(ctx, user.ID)
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return s.issueTokens(ctx, userID, false)
}

// GoogleAuthURL returns the consent page URL for state
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return "", apperror.NewBadRequestError("Google sign-in is not configured")
	}
	return s.google.GetAuthURL(state), nil
}

// GoogleLogin signs in an existing staff member by their verified Google email.
// Unknown emails are rejected; accounts are never created here.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginOutput, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return nil, apperror.NewBadRequestError("Google sign-in is not configured")
	}

	info, err := s.google.Authenticate(ctx, code)
	if err != nil {
		return nil, apperror.NewUnauthorizedError("Google sign-in failed")
	}
	if !info.VerifiedEmail {
		return nil, apperror.NewUnauthorizedError("Google email is not verified")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(info.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewUnauthorizedError("No staff account uses this email")
	}

	if user.ProviderID == nil {
		user.Provider = "google"
		user.ProviderID = &info.ID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(ctx, user.ID, true)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if user.Password != "" && !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewFieldError("current_password", "Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// VerifyPasswordInput asks an approver to confirm an elevated action
type VerifyPasswordInput struct {
	Login    string
	Password string
	Purpose  string
	BillID   *uuid.UUID
}

// ApprovalOutput is a short-lived approval token
type ApprovalOutput struct {
	Token      string    `json:"approval_token"`
	ExpiresAt  time.Time `json:"expires_at"`
	ApproverID uuid.UUID `json:"approver_id"`
	Approver   string    `json:"approver"`
}

// approvalPermissions maps approval purposes to the permission the approver needs
var approvalPermissions = map[string]string{
	ApprovalPurposeReverseBill: enum.PermReverseBills,
}

// VerifyPassword checks the approver's credentials and permission and
// returns an approval token for purpose
func (s *AuthService) VerifyPassword(ctx context.Context, input *VerifyPasswordInput) (*ApprovalOutput, error) {
	if input.Purpose == "" {
		input.Purpose = ApprovalPurposeReverseBill
	}
	permission, ok := approvalPermissions[input.Purpose]
	if !ok {
		return nil, apperror.NewFieldError("purpose", "Unknown approval purpose")
	}

	user, err := s.findByLogin(ctx, input.Login)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	user, err = s.userRepo.GetWithRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !user.HasPermission(permission) {
		return nil, apperror.NewForbiddenError("This user cannot approve the action")
	}
	if input.Purpose == ApprovalPurposeReverseBill && input.BillID == nil {
		return nil, apperror.NewFieldError("bill_id", "Bill is required to approve a reversal")
	}

	token, expiresAt, err := s.jwtManager.GenerateApprovalToken(user.ID, input.Purpose, input.BillID)
	if err != nil {
		return nil, err
	}
	return &ApprovalOutput{
		Token:      token,
		ExpiresAt:  expiresAt,
		ApproverID: user.ID,
		Approver:   user.FullName,
	}, nil
}
