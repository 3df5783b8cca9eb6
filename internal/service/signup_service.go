package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"cuprewards/internal/auth"
	"cuprewards/internal/crypto"
	"cuprewards/internal/errors"
	"cuprewards/internal/mailer"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

const (
	otpLength = 6
	otpExpiry = 5 * time.Minute
)

// SignupInput carries the identity fields submitted at signup.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	DOB       *time.Time
}

// SignupService drives the multi-step signup flow: request (OTP issued) →
// verify → set password (account created). Progress between steps is
// carried solely by the pending capability token's email hash.
type SignupService interface {
	RequestSignup(ctx context.Context, in SignupInput) (pendingToken string, err error)
	VerifyCode(ctx context.Context, emailHash, code string) error
	SetPassword(ctx context.Context, emailHash, password string) (*AuthResult, error)
	ResendCode(ctx context.Context, emailHash string) error
}

type signupService struct {
	users   repository.UserRepository
	pending repository.PendingSignupRepository
	tokens  *auth.TokenService
	cipher  *crypto.Cipher
	mail    mailer.Mailer
	log     zerolog.Logger
}

// NewSignupService creates a new signup service.
func NewSignupService(
	users repository.UserRepository,
	pending repository.PendingSignupRepository,
	tokens *auth.TokenService,
	cipher *crypto.Cipher,
	mail mailer.Mailer,
	log zerolog.Logger,
) SignupService {
	return &signupService{
		users:   users,
		pending: pending,
		tokens:  tokens,
		cipher:  cipher,
		mail:    mail,
		log:     log,
	}
}

// RequestSignup starts a signup: rejects emails belonging to existing
// users, replaces any stale pending row, stores a hashed OTP and mails
// the code. OTP delivery is required, so a mail failure fails the call.
func (s *signupService) RequestSignup(ctx context.Context, in SignupInput) (string, error) {
	emailHash := crypto.LookupHash(in.Email)

	if _, err := s.users.FindByEmailHash(ctx, emailHash); err == nil {
		return "", errors.ErrUserAlreadyExists
	} else if err != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("check existing user: %w", err)
	}

	if err := s.pending.DeleteByEmailHash(ctx, emailHash); err != nil {
		return "", fmt.Errorf("purge stale pending signup: %w", err)
	}

	otp, err := generateOTP(otpLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	row := &model.PendingSignup{
		EmailHash:    emailHash,
		OTPHash:      crypto.LookupHash(otp),
		OTPExpiresAt: time.Now().Add(otpExpiry),
		DOB:          in.DOB,
	}
	if row.FirstNameEnc, err = s.cipher.Encrypt(in.FirstName); err != nil {
		return "", fmt.Errorf("encrypt first name: %w", err)
	}
	if row.LastNameEnc, err = s.cipher.Encrypt(in.LastName); err != nil {
		return "", fmt.Errorf("encrypt last name: %w", err)
	}
	if row.EmailEnc, err = s.cipher.Encrypt(in.Email); err != nil {
		return "", fmt.Errorf("encrypt email: %w", err)
	}
	if row.MobileEnc, err = s.cipher.Encrypt(in.Mobile); err != nil {
		return "", fmt.Errorf("encrypt mobile: %w", err)
	}

	if err := s.pending.Create(ctx, row); err != nil {
		// A concurrent request for the same email won the unique index.
		if err == gorm.ErrDuplicatedKey {
			return "", errors.ErrSignupConflict
		}
		return "", fmt.Errorf("create pending signup: %w", err)
	}

	token, err := s.tokens.IssuePendingToken(emailHash)
	if err != nil {
		return "", fmt.Errorf("issue pending token: %w", err)
	}

	if err := s.mail.SendOTP(in.Email, otp); err != nil {
		return "", fmt.Errorf("dispatch otp: %w", err)
	}

	s.log.Info().Str("email_hash", emailHash).Msg("signup requested, otp sent")
	return token, nil
}

// VerifyCode checks the submitted OTP against the pending row. Expired
// rows are deleted so a stale flow cannot be resumed. Verification does
// not consume the code; the set-password step re-resolves the row.
func (s *signupService) VerifyCode(ctx context.Context, emailHash, code string) error {
	row, err := s.pending.FindByEmailHash(ctx, emailHash)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrPendingNotFound
		}
		return fmt.Errorf("find pending signup: %w", err)
	}

	if time.Now().After(row.OTPExpiresAt) {
		if err := s.pending.DeleteByID(ctx, row.ID); err != nil {
			return fmt.Errorf("delete expired pending signup: %w", err)
		}
		return errors.ErrOTPExpired
	}

	if crypto.LookupHash(code) != row.OTPHash {
		return errors.ErrInvalidOTP
	}
	return nil
}

// SetPassword promotes the pending signup to a full customer account. The
// user, the customer profile and the pending-row deletion commit as one
// transaction, then a token pair is issued.
func (s *signupService) SetPassword(ctx context.Context, emailHash, password string) (*AuthResult, error) {
	if len(password) < auth.MinPasswordLength {
		return nil, errors.ErrWeakPassword
	}

	row, err := s.pending.FindByEmailHash(ctx, emailHash)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPendingNotFound
		}
		return nil, fmt.Errorf("find pending signup: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Role:         model.RoleCustomer,
		EmailEnc:     row.EmailEnc,
		EmailHash:    row.EmailHash,
		MobileEnc:    row.MobileEnc,
		PasswordHash: &passwordHash,
		Active:       true,
		CustomerProfile: &model.CustomerProfile{
			FirstNameEnc: row.FirstNameEnc,
			LastNameEnc:  row.LastNameEnc,
			DOB:          row.DOB,
		},
	}

	err = s.users.WithTransaction(ctx, func(ctx context.Context, users repository.UserRepository, pending repository.PendingSignupRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return pending.DeleteByID(ctx, row.ID)
	})
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

	profile, err := buildProfile(s.cipher, user, user.CustomerProfile, nil)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("signup completed")
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &UserView{ID: user.ID, Role: user.Role, Profile: profile},
	}, nil
}

// ResendCode regenerates the OTP on the existing pending signup.
func (s *signupService) ResendCode(ctx context.Context, emailHash string) error {
	row, err := s.pending.FindByEmailHash(ctx, emailHash)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrPendingNotFound
		}
		return fmt.Errorf("find pending signup: %w", err)
	}

	otp, err := generateOTP(otpLength)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.pending.UpdateOTP(ctx, row.ID, crypto.LookupHash(otp), time.Now().Add(otpExpiry)); err != nil {
		return fmt.Errorf("update otp: %w", err)
	}

	email, err := s.cipher.Decrypt(row.EmailEnc)
	if err != nil {
		return fmt.Errorf("decrypt email: %w", err)
	}
	if err := s.mail.SendOTP(email, otp); err != nil {
		return fmt.Errorf("dispatch otp: %w", err)
	}
	return nil
}

// generateOTP generates a cryptographically secure numeric code.
func generateOTP(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
