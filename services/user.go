package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository"
	"github.com/famoney/famoney-api/utils"
)

type UserService struct {
	store repository.Store
	locks *LedgerLocks
}

func NewUserService(store repository.Store, locks *LedgerLocks) *UserService {
	return &UserService{store: store, locks: locks}
}

// Get returns the user's own profile.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

// UpdateProfile patches name and/or avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name", "name is required")
		}
		user.Name = name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	user.UpdatedAt = time.Now()

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every refresh session.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apperr.Unauthorized("current password is incorrect")
	}
	if len(req.NewPassword) < 6 {
		return apperr.Validation("new_password", "password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	if err := s.store.Sessions().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	log.Printf("✅ Password changed for user %s, sessions revoked", userID)
	return nil
}

// SetupTOTP generates a fresh secret and stores it disabled; VerifyTOTP
// turns it on once the user proves they hold the authenticator.
func (s *UserService) SetupTOTP(ctx context.Context, userID string) (*models.TOTPSetupResponse, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, apperr.Conflict("two-factor authentication is already enabled")
	}

	secret, url, err := utils.GenerateTOTPSecret(user.Email)
	if err != nil {
		return nil, err
	}
	user.TOTPSecret = secret
	user.TOTPEnabled = false
	user.UpdatedAt = time.Now()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{Secret: secret, URL: url}, nil
}

// VerifyTOTP enables two-factor after a valid code against the pending
// secret.
func (s *UserService) VerifyTOTP(ctx context.Context, userID, code string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return apperr.Conflict("two-factor setup has not been started")
	}
	if !utils.VerifyTOTP(user.TOTPSecret, code) {
		return apperr.Unauthorized("invalid totp code")
	}

	user.TOTPEnabled = true
	user.UpdatedAt = time.Now()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	log.Printf("✅ Two-factor enabled for user %s", userID)
	return nil
}

// DisableTOTP turns two-factor off after re-verifying the password.
func (s *UserService) DisableTOTP(ctx context.Context, userID, password string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return apperr.Unauthorized("password is incorrect")
	}

	user.TOTPEnabled = false
	user.TOTPSecret = ""
	user.UpdatedAt = time.Now()
	return s.store.Users().Update(ctx, user)
}

// DeleteAccount removes the user, cascading every ledger they own and
// withdrawing their other memberships. Authored expenses in surviving
// ledgers keep their attribution.
func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return apperr.Unauthorized("password is incorrect")
	}

	ledgerIDs, err := s.store.Members().ListLedgerIDsByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, ledgerID := range ledgerIDs {
		member, err := s.store.Members().Get(ctx, ledgerID, userID)
		if err != nil {
			return err
		}
		if member == nil || member.Role != policy.RoleOwner {
			continue
		}
		unlock := s.locks.Lock(ledgerID)
		err = s.store.Ledgers().DeleteCascade(ctx, ledgerID)
		unlock()
		if err != nil {
			return err
		}
		s.locks.Forget(ledgerID)
	}

	if err := s.store.Members().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Sessions().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ Deleted account %s", userID)
	return nil
}
