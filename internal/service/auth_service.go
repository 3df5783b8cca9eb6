package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"cuprewards/internal/auth"
	"cuprewards/internal/crypto"
	"cuprewards/internal/errors"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// AuthService handles login, token refresh and invite-based password setup.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	SetStaffPassword(ctx context.Context, resetToken, password string) error
}

type authService struct {
	users     repository.UserRepository
	customers repository.CustomerProfileRepository
	staff     repository.StaffRepository
	tokens    *auth.TokenService
	cipher    *crypto.Cipher
	log       zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	customers repository.CustomerProfileRepository,
	staff repository.StaffRepository,
	tokens *auth.TokenService,
	cipher *crypto.Cipher,
	log zerolog.Logger,
) AuthService {
	return &authService{
		users:     users,
		customers: customers,
		staff:     staff,
		tokens:    tokens,
		cipher:    cipher,
		log:       log,
	}
}

// Login authenticates by email lookup hash and password, and issues a
// token pair bound to the user's current tokenVersion.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmailHash(ctx, crypto.LookupHash(email))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == nil || !auth.VerifyPassword(password, *user.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, errors.ErrAccountDisabled
	}

	var (
		customer *model.CustomerProfile
		staff    *model.StaffProfile
	)
	switch user.Role {
	case model.RoleCustomer:
		if customer, err = s.customers.FindByUserID(ctx, user.ID); err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("load customer profile: %w", err)
		}
	case model.RoleStaff:
		if staff, err = s.staff.FindByUserID(ctx, user.ID); err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("load staff profile: %w", err)
		}
	}

	profile, err := buildProfile(s.cipher, user, customer, staff)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &UserView{ID: user.ID, Role: user.Role, Profile: profile},
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated. A tokenVersion that no longer
// matches the stored user means the session was revoked.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", auth.ErrTokenInvalid
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", errors.ErrTokenRevoked
	}
	if !user.Active {
		return "", errors.ErrAccountDisabled
	}

	return s.tokens.IssueAccessToken(user.ID, user.Role, user.TokenVersion)
}

// SetStaffPassword completes staff onboarding via the emailed reset token:
// sets the password, activates the account, clears the token and bumps
// tokenVersion so anything issued before onboarding is dead.
func (s *authService) SetStaffPassword(ctx context.Context, resetToken, password string) error {
	if len(password) < auth.MinPasswordLength {
		return errors.ErrWeakPassword
	}

	user, err := s.users.FindByResetToken(ctx, resetToken, time.Now())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInviteInvalid
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = &passwordHash
	user.Active = true
	user.PasswordResetToken = nil
	user.PasswordResetExpiry = nil
	user.TokenVersion++

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("staff password set")
	return nil
}
