package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer           = "restaurant-pos-api"
	refreshAudience  = "refresh"
	approvalAudience = "approval"
)

// JWTClaims represents the claims in an access token
type JWTClaims struct {
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	OutletID    *uuid.UUID `json:"outlet_id,omitempty"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	jwt.RegisteredClaims
}

// ApprovalClaims authorize one elevated action on behalf of an approver
type ApprovalClaims struct {
	ApproverID uuid.UUID  `json:"approver_id"`
	Purpose    string     `json:"purpose"`
	BillID     *uuid.UUID `json:"bill_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey          []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	approvalExpiry     time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessExpiry, refreshExpiry, approvalExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:          []byte(secret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
		approvalExpiry:     approvalExpiry,
	}
}

func (m *JWTManager) registered(subject string, expiry time.Duration, audience ...string) jwt.RegisteredClaims {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
	}
	if len(audience) > 0 {
		claims.Audience = audience
	}
	return claims
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

func (m *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return m.secretKey, nil
}

// GenerateAccessToken generates a new access token
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, username string, outletID *uuid.UUID, roles, permissions []string) (string, error) {
	return m.sign(&JWTClaims{
		UserID:           userID,
		Username:         username,
		OutletID:         outletID,
		Roles:            roles,
		Permissions:      permissions,
		RegisteredClaims: m.registered(userID.String(), m.accessTokenExpiry),
	})
}

// GenerateRefreshToken generates a new refresh token
func (m *JWTManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	claims := m.registered(userID.String(), m.refreshTokenExpiry, refreshAudience)
	return m.sign(&claims)
}

// GenerateApprovalToken issues a short-lived token for purpose, optionally bound to one bill
func (m *JWTManager) GenerateApprovalToken(approverID uuid.UUID, purpose string, billID *uuid.UUID) (string, time.Time, error) {
	claims := &ApprovalClaims{
		ApproverID:       approverID,
		Purpose:          purpose,
		BillID:           billID,
		RegisteredClaims: m.registered(approverID.String(), m.approvalExpiry, approvalAudience),
	}
	token, err := m.sign(claims)
	return token, claims.ExpiresAt.Time, err
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, m.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil || len(claims.Audience) > 0 {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ValidateRefreshToken validates a refresh token and returns the user ID
func (m *JWTManager) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, m.keyFunc,
		jwt.WithAudience(refreshAudience))
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("invalid user ID in token")
	}

	return userID, nil
}

// ValidateApprovalToken checks an approval token was issued for purpose
func (m *JWTManager) ValidateApprovalToken(tokenString, purpose string) (*ApprovalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ApprovalClaims{}, m.keyFunc,
		jwt.WithAudience(approvalAudience))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ApprovalClaims)
	if !ok || !token.Valid || claims.ApproverID == uuid.Nil {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, errors.New("approval token issued for another action")
	}

	return claims, nil
}
