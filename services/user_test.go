package services

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository/memory"
	"github.com/famoney/famoney-api/utils"
)

func newUserEnv(t *testing.T) (*testEnv, *UserService, *AuthService) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	store := memory.New()
	locks := NewLedgerLocks()
	env := &testEnv{
		store:   store,
		locks:   locks,
		ledgers: NewLedgerService(store, locks),
		members: NewMemberService(store, locks),
		exps:    NewExpenseService(store),
		cats:    NewCategoryService(store),
		stats:   NewStatsService(store),
	}
	return env, NewUserService(store, locks), NewAuthService(store)
}

func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestUpdateProfile(t *testing.T) {
	_, users, auth := newUserEnv(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	name := "Renamed"
	avatar := "https://example.com/a.png"
	updated, err := users.UpdateProfile(ctx, resp.User.ID, models.UpdateProfileRequest{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, avatar, updated.Avatar)

	blank := "  "
	_, err = users.UpdateProfile(ctx, resp.User.ID, models.UpdateProfileRequest{Name: &blank})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	_, users, auth := newUserEnv(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	err = users.ChangePassword(ctx, resp.User.ID, models.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newsecret",
	})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	err = users.ChangePassword(ctx, resp.User.ID, models.ChangePasswordRequest{
		CurrentPassword: "secret1", NewPassword: "newsecret",
	})
	require.NoError(t, err)

	// Old refresh token was revoked, old password no longer logs in.
	_, err = auth.Refresh(ctx, resp.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = auth.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = auth.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "newsecret"})
	require.NoError(t, err)
}

func TestTOTPLifecycle(t *testing.T) {
	_, users, auth := newUserEnv(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)
	userID := resp.User.ID

	// Verify before setup.
	err = users.VerifyTOTP(ctx, userID, "000000")
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	setup, err := users.SetupTOTP(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.URL, "FaMoney")

	err = users.VerifyTOTP(ctx, userID, "000000")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	require.True(t, utils.VerifyTOTP(setup.Secret, totpCode(t, setup.Secret)))
	require.NoError(t, users.VerifyTOTP(ctx, userID, totpCode(t, setup.Secret)))

	// Enabled now: setup again conflicts, login demands a code.
	_, err = users.SetupTOTP(ctx, userID)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	_, err = auth.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = auth.Login(ctx, models.LoginRequest{
		Email: "a@example.com", Password: "secret1", TOTPCode: totpCode(t, setup.Secret),
	})
	require.NoError(t, err)

	require.NoError(t, users.DisableTOTP(ctx, userID, "secret1"))
	_, err = auth.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func TestDeleteAccountCascadesOwnedLedgers(t *testing.T) {
	env, users, auth := newUserEnv(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)
	userID := resp.User.ID

	other := env.createUser(t, "other@example.com", "Other")
	otherLedger := env.createLedger(t, other.ID, "Theirs")
	env.addMember(t, otherLedger.ID, userID, policy.RoleMember)

	owned := env.createLedger(t, userID, "Mine")

	require.NoError(t, users.DeleteAccount(ctx, userID, "secret1"))

	// Owned ledger is gone, the other one survives without the membership.
	gone, err := env.store.Ledgers().GetByID(ctx, owned.ID)
	require.NoError(t, err)
	require.Nil(t, gone)

	kept, err := env.store.Ledgers().GetByID(ctx, otherLedger.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)

	m, err := env.store.Members().Get(ctx, otherLedger.ID, userID)
	require.NoError(t, err)
	require.Nil(t, m)

	u, err := env.store.Users().GetByID(ctx, userID)
	require.NoError(t, err)
	require.Nil(t, u)
}
