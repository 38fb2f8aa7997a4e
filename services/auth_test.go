package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/repository/memory"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	return NewAuthService(memory.New())
}

func TestSignupAndLogin(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{
		Email: "User@Example.com", Password: "secret1", Name: "User",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "user@example.com", resp.User.Email)

	// Email lookup is case-insensitive.
	logged, err := auth.Login(ctx, models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, logged.User.ID)

	_, err = auth.Login(ctx, models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = auth.Signup(ctx, models.SignupRequest{Email: "A@example.com", Password: "secret1", Name: "A2"})
	require.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
}

func TestSignupValidation(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "short", Name: "A"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "  "})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRefreshRotation(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The consumed token no longer works.
	_, err = auth.Refresh(ctx, resp.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLogout(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, resp.RefreshToken))
	_, err = auth.Refresh(ctx, resp.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
