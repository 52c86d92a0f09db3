package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","email":"Cashier@Example.com","verified_email":true,"name":"Cashier"}`))
	}))
	defer srv.Close()

	svc := NewGoogleOAuthService(GoogleOAuthConfig{ClientID: "id", ClientSecret: "secret"})
	svc.userInfoURL = srv.URL

	info, err := svc.fetchUserInfo(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "42", info.ID)
	assert.True(t, info.VerifiedEmail)
}

func TestFetchUserInfo_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewGoogleOAuthService(GoogleOAuthConfig{})
	svc.userInfoURL = srv.URL

	_, err := svc.fetchUserInfo(context.Background(), srv.Client())
	assert.ErrorIs(t, err, ErrFailedToGetUser)
}

func TestAuthenticate_NotConfigured(t *testing.T) {
	svc := NewGoogleOAuthService(GoogleOAuthConfig{})
	_, err := svc.Authenticate(context.Background(), "code")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)
}

func TestNewState_IsRandom(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
