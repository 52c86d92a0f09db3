package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginByUsernameOrEmail(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(f.cashier).Update("email", "cashier@example.com").Error)

	out, err := f.auth.Login(f.ctx, &LoginInput{Login: "cashier1", Password: f.password})
	require.NoError(t, err)
	assert.Equal(t, f.cashier.ID, out.User.ID)

	claims, err := f.jwt.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.cashier.ID, claims.UserID)
	require.NotNil(t, claims.OutletID)
	assert.Equal(t, f.outlet.ID, *claims.OutletID)
	assert.Contains(t, claims.Roles, enum.RoleCashier)
	assert.Contains(t, claims.Permissions, enum.PermSettleBills)
	assert.NotContains(t, claims.Permissions, enum.PermReverseBills)

	out, err = f.auth.Login(f.ctx, &LoginInput{Login: "Cashier@Example.com", Password: f.password})
	require.NoError(t, err)
	assert.Equal(t, f.cashier.ID, out.User.ID)
}

func TestAuth_LoginFailures(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(f.ctx, &LoginInput{Login: "cashier1", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = f.auth.Login(f.ctx, &LoginInput{Login: "nobody", Password: f.password})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	require.NoError(t, f.db.Model(f.cashier).Update("is_active", false).Error)
	_, err = f.auth.Login(f.ctx, &LoginInput{Login: "cashier1", Password: f.password})
	assert.ErrorIs(t, err, apperror.ErrAccountDisabled)
}

func TestAuth_RefreshToken(t *testing.T) {
	f := newFixture(t)
	out, err := f.auth.Login(f.ctx, &LoginInput{Login: "manager1", Password: f.password})
	require.NoError(t, err)

	refreshed, err := f.auth.RefreshToken(f.ctx, out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.manager.ID, refreshed.User.ID)

	_, err = f.auth.RefreshToken(f.ctx, out.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestAuth_ChangePassword(t *testing.T) {
	f := newFixture(t)

	err := f.auth.ChangePassword(f.ctx, &ChangePasswordInput{UserID: f.cashier.ID, CurrentPassword: "nope", NewPassword: "newsecret"})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "current_password", appErr.Errors[0].Field)

	require.NoError(t, f.auth.ChangePassword(f.ctx, &ChangePasswordInput{UserID: f.cashier.ID, CurrentPassword: f.password, NewPassword: "newsecret"}))
	_, err = f.auth.Login(f.ctx, &LoginInput{Login: "cashier1", Password: "newsecret"})
	require.NoError(t, err)
}

func TestAuth_VerifyPasswordIssuesScopedApproval(t *testing.T) {
	f := newFixture(t)
	bill := f.openBill(t, 1)

	_, err := f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{Login: "manager1", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{Login: "manager1", Password: f.password, Purpose: "refund"})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	_, err = f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{Login: "manager1", Password: f.password})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	out, err := f.auth.VerifyPassword(f.ctx, &VerifyPasswordInput{Login: "manager1", Password: f.password, BillID: &bill.ID})
	require.NoError(t, err)
	assert.Equal(t, f.manager.ID, out.ApproverID)

	claims, err := f.jwt.ValidateApprovalToken(out.Token, ApprovalPurposeReverseBill)
	require.NoError(t, err)
	require.NotNil(t, claims.BillID)
	assert.Equal(t, bill.ID, *claims.BillID)

	_, err = f.jwt.ValidateAccessToken(out.Token)
	assert.Error(t, err)
}

func TestAuth_GoogleNotConfigured(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.GoogleAuthURL("state")
	requireAppError(t, err, http.StatusBadRequest)
	_, err = f.auth.GoogleLogin(f.ctx, "code")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestUsers_CreateWithRoles(t *testing.T) {
	f := newFixture(t)
	email := "Waiter@Example.com"

	user, err := f.users.CreateUser(f.ctx, &UserInput{
		Username: "waiter1",
		Email:    &email,
		Password: "secret123",
		OutletID: &f.outlet.ID,
		Roles:    []string{enum.RoleCaptain, enum.RoleCaptain},
	})
	require.NoError(t, err)
	assert.Equal(t, "waiter1", user.FullName)
	require.NotNil(t, user.Email)
	assert.Equal(t, "waiter@example.com", *user.Email)
	assert.Equal(t, []string{enum.RoleCaptain}, user.RoleNames())
	assert.True(t, utils.CheckPasswordHash("secret123", user.Password))

	_, err = f.users.CreateUser(f.ctx, &UserInput{Username: "waiter1", Password: "secret123"})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "username", appErr.Errors[0].Field)

	_, err = f.users.CreateUser(f.ctx, &UserInput{Username: "waiter2", Password: "secret123", Roles: []string{"chef"}})
	appErr = requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "roles", appErr.Errors[0].Field)
	existing, err := infraRepo.NewUserRepository(f.db).GetByUsername(context.Background(), "waiter2")
	require.NoError(t, err)
	assert.Nil(t, existing)

	_, err = f.users.CreateUser(f.ctx, &UserInput{Username: "waiter3", Password: "123"})
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestUsers_UpdateReplacesRolesOnlyWhenGiven(t *testing.T) {
	f := newFixture(t)

	updated, err := f.users.UpdateUser(f.ctx, f.cashier.ID, &UserInput{FullName: "Asha Patil"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Patil", updated.FullName)
	assert.Equal(t, []string{enum.RoleCashier}, updated.RoleNames())

	updated, err = f.users.UpdateUser(f.ctx, f.cashier.ID, &UserInput{Roles: []string{enum.RoleManager}})
	require.NoError(t, err)
	assert.Equal(t, []string{enum.RoleManager}, updated.RoleNames())
}

func TestUsers_OutletBoundManagerSeesOwnOutlet(t *testing.T) {
	f := newFixture(t)
	rooftop, err := f.masters.Outlets.Create(f.ctx, &entity.Outlet{HotelID: f.outlet.HotelID, Name: "Rooftop", Code: "RT", IsActive: true})
	require.NoError(t, err)
	foreign, err := f.users.CreateUser(f.ctx, &UserInput{Username: "rooftop1", Password: "secret123", OutletID: &rooftop.ID})
	require.NoError(t, err)

	ctx := f.outletCtx()
	page, err := f.users.ListUsers(ctx, nil, "", &rooftop.ID)
	require.NoError(t, err)
	for _, u := range page.Items {
		require.NotNil(t, u.OutletID)
		assert.Equal(t, f.outlet.ID, *u.OutletID)
	}

	_, err = f.users.GetUser(ctx, foreign.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.users.CreateUser(ctx, &UserInput{Username: "rooftop2", Password: "secret123", OutletID: &rooftop.ID})
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.users.ListUsers(context.Background(), nil, "", nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUsers_DeleteSelfIsRejected(t *testing.T) {
	f := newFixture(t)

	err := f.users.DeleteUser(f.ctx, f.manager.ID, f.manager.ID)
	requireAppError(t, err, http.StatusBadRequest)

	require.NoError(t, f.users.DeleteUser(f.ctx, f.manager.ID, f.cashier.ID))
	_, err = f.users.GetUser(f.ctx, f.cashier.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUsers_ListRolesAndPermissions(t *testing.T) {
	f := newFixture(t)

	roles, err := f.users.ListRoles(f.ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(enum.RolePermissions))

	perms, err := f.users.ListPermissions(f.ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(enum.AllPermissions))
}
