package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour, 24*time.Hour, 5*time.Minute)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()
	outletID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "cashier1", &outletID, []string{"cashier"}, []string{"settle-bills"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "cashier1", claims.Username)
	require.NotNil(t, claims.OutletID)
	assert.Equal(t, outletID, *claims.OutletID)
	assert.Equal(t, []string{"settle-bills"}, claims.Permissions)
}

func TestTokens_AreNotInterchangeable(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()

	refresh, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)
	approval, _, err := m.GenerateApprovalToken(userID, "bill.reverse", nil)
	require.NoError(t, err)
	access, err := m.GenerateAccessToken(userID, "u", nil, nil, nil)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err, "refresh token must not authenticate requests")
	_, err = m.ValidateAccessToken(approval)
	assert.Error(t, err, "approval token must not authenticate requests")
	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = m.ValidateApprovalToken(access, "bill.reverse")
	assert.Error(t, err)

	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestApprovalToken_PurposeAndExpiry(t *testing.T) {
	m := newTestManager()
	approver := uuid.New()
	billID := uuid.New()

	token, expiresAt, err := m.GenerateApprovalToken(approver, "bill.reverse", &billID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := m.ValidateApprovalToken(token, "bill.reverse")
	require.NoError(t, err)
	assert.Equal(t, approver, claims.ApproverID)
	require.NotNil(t, claims.BillID)
	assert.Equal(t, billID, *claims.BillID)

	_, err = m.ValidateApprovalToken(token, "settlement.edit")
	assert.Error(t, err)

	expired := NewJWTManager("test-secret", time.Hour, time.Hour, -time.Minute)
	old, _, err := expired.GenerateApprovalToken(approver, "bill.reverse", nil)
	require.NoError(t, err)
	_, err = m.ValidateApprovalToken(old, "bill.reverse")
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := newTestManager().GenerateAccessToken(uuid.New(), "u", nil, nil, nil)
	require.NoError(t, err)

	other := NewJWTManager("other-secret", time.Hour, time.Hour, time.Minute)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
