package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/repository"
	"github.com/famoney/famoney-api/utils"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService struct {
	store repository.Store
}

func NewAuthService(store repository.Store) *AuthService {
	return &AuthService{store: store}
}

// Signup registers a user and logs them in.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperr.Validation("email", "email is required")
	}
	if len(req.Password) < 6 {
		return nil, apperr.Validation("password", "password must be at least 6 characters")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("name", "name is required")
	}

	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("an account with this email already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ New user signed up: %s", email)
	return s.issueTokens(ctx, user)
}

// Login verifies credentials and, when two-factor is enabled, the TOTP code.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, apperr.Unauthorized("totp code required")
		}
		if !utils.VerifyTOTP(user.TOTPSecret, req.TOTPCode) {
			return nil, apperr.Unauthorized("invalid totp code")
		}
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	session, err := s.store.Sessions().GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.store.Sessions().Delete(ctx, refreshToken)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("user no longer exists")
	}

	if err := s.store.Sessions().Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout invalidates the presented refresh token. Unknown tokens are a
// silent success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.store.Sessions().Delete(ctx, refreshToken)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	access, err := utils.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
		CreatedAt:    time.Now(),
	}
	if err := s.store.Sessions().Create(ctx, session); err != nil {
		return nil, err
	}

	return &models.AuthResponse{AccessToken: access, RefreshToken: refresh, User: *user}, nil
}
