package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"cuprewards/internal/auth"
	"cuprewards/internal/crypto"
	"cuprewards/internal/errors"
	"cuprewards/internal/model"
)

func newSignupFixture(users *MockUserRepository, pending *MockPendingSignupRepository, mail *MockMailer) (SignupService, *auth.TokenService, *crypto.Cipher) {
	tokens := auth.NewTokenService("access-secret", "refresh-secret", "pending-secret")
	cipher := newTestCipher()
	return NewSignupService(users, pending, tokens, cipher, mail, zerolog.Nop()), tokens, cipher
}

func TestRequestSignup(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, tokens, _ := newSignupFixture(users, pending, mail)

	email := "jane@example.com"
	emailHash := crypto.LookupHash(email)

	users.On("FindByEmailHash", mock.Anything, emailHash).Return(nil, gorm.ErrRecordNotFound)
	pending.On("DeleteByEmailHash", mock.Anything, emailHash).Return(nil)

	var sentOTP string
	mail.On("SendOTP", email, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
		sentOTP = args.String(1)
	}).Return(nil)

	var stored *model.PendingSignup
	pending.On("Create", mock.Anything, mock.AnythingOfType("*model.PendingSignup")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*model.PendingSignup)
	}).Return(nil)

	token, err := svc.RequestSignup(context.Background(), SignupInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Mobile:    "5550100",
	})

	assert.NoError(t, err)
	assert.Len(t, sentOTP, 6)
	assert.Equal(t, crypto.LookupHash(sentOTP), stored.OTPHash)
	assert.Equal(t, emailHash, stored.EmailHash)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), stored.OTPExpiresAt, 5*time.Second)

	claims, err := tokens.VerifyPendingToken(token)
	assert.NoError(t, err)
	assert.Equal(t, emailHash, claims.EmailHash)
}

func TestRequestSignupExistingUser(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, _, _ := newSignupFixture(users, pending, mail)

	users.On("FindByEmailHash", mock.Anything, mock.Anything).Return(&model.User{ID: uuid.New()}, nil)

	_, err := svc.RequestSignup(context.Background(), SignupInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "taken@example.com",
	})
	assert.ErrorIs(t, err, errors.ErrUserAlreadyExists)
	pending.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestSignupConcurrentConflict(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, _, _ := newSignupFixture(users, pending, mail)

	users.On("FindByEmailHash", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	pending.On("DeleteByEmailHash", mock.Anything, mock.Anything).Return(nil)
	pending.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.RequestSignup(context.Background(), SignupInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "race@example.com",
	})
	assert.ErrorIs(t, err, errors.ErrSignupConflict)
	mail.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything)
}

func TestRequestSignupMailFailure(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, _, _ := newSignupFixture(users, pending, mail)

	users.On("FindByEmailHash", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	pending.On("DeleteByEmailHash", mock.Anything, mock.Anything).Return(nil)
	pending.On("Create", mock.Anything, mock.Anything).Return(nil)
	mail.On("SendOTP", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.RequestSignup(context.Background(), SignupInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "unreachable@example.com",
	})
	assert.Error(t, err)
}

func TestVerifyCode(t *testing.T) {
	emailHash := crypto.LookupHash("jane@example.com")
	rowID := uuid.New()

	tests := []struct {
		name       string
		row        *model.PendingSignup
		findErr    error
		code       string
		wantErr    error
		wantDelete bool
	}{
		{
			name: "valid code",
			row: &model.PendingSignup{
				ID:           rowID,
				EmailHash:    emailHash,
				OTPHash:      crypto.LookupHash("123456"),
				OTPExpiresAt: time.Now().Add(time.Minute),
			},
			code: "123456",
		},
		{
			name: "wrong code",
			row: &model.PendingSignup{
				ID:           rowID,
				EmailHash:    emailHash,
				OTPHash:      crypto.LookupHash("123456"),
				OTPExpiresAt: time.Now().Add(time.Minute),
			},
			code:    "654321",
			wantErr: errors.ErrInvalidOTP,
		},
		{
			name: "expired code removes row",
			row: &model.PendingSignup{
				ID:           rowID,
				EmailHash:    emailHash,
				OTPHash:      crypto.LookupHash("123456"),
				OTPExpiresAt: time.Now().Add(-time.Minute),
			},
			code:       "123456",
			wantErr:    errors.ErrOTPExpired,
			wantDelete: true,
		},
		{
			name:    "no pending signup",
			findErr: gorm.ErrRecordNotFound,
			code:    "123456",
			wantErr: errors.ErrPendingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			pending := new(MockPendingSignupRepository)
			mail := new(MockMailer)
			svc, _, _ := newSignupFixture(users, pending, mail)

			if tt.findErr != nil {
				pending.On("FindByEmailHash", mock.Anything, emailHash).Return(nil, tt.findErr)
			} else {
				pending.On("FindByEmailHash", mock.Anything, emailHash).Return(tt.row, nil)
			}
			if tt.wantDelete {
				pending.On("DeleteByID", mock.Anything, rowID).Return(nil)
			}

			err := svc.VerifyCode(context.Background(), emailHash, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			pending.AssertExpectations(t)
		})
	}
}

func TestSetPassword(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, tokens, cipher := newSignupFixture(users, pending, mail)
	users.Pending = pending

	email := "jane@example.com"
	emailHash := crypto.LookupHash(email)
	rowID := uuid.New()

	row := &model.PendingSignup{
		ID:           rowID,
		EmailHash:    emailHash,
		EmailEnc:     mustEncrypt(cipher, email),
		FirstNameEnc: mustEncrypt(cipher, "Jane"),
		LastNameEnc:  mustEncrypt(cipher, "Doe"),
		MobileEnc:    mustEncrypt(cipher, "5550100"),
		OTPHash:      crypto.LookupHash("123456"),
		OTPExpiresAt: time.Now().Add(time.Minute),
	}

	pending.On("FindByEmailHash", mock.Anything, emailHash).Return(row, nil)
	pending.On("DeleteByID", mock.Anything, rowID).Return(nil)

	var created *model.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
		created.ID = uuid.New()
	}).Return(nil)

	result, err := svc.SetPassword(context.Background(), emailHash, "sup3r-secret")

	assert.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, created.Role)
	assert.True(t, created.Active)
	assert.True(t, auth.VerifyPassword("sup3r-secret", *created.PasswordHash))
	assert.NotNil(t, created.CustomerProfile)

	assert.Equal(t, model.RoleCustomer, result.User.Role)
	assert.Equal(t, email, result.User.Profile.Email)
	assert.Equal(t, "Jane", result.User.Profile.FirstName)

	claims, err := tokens.VerifyAccessToken(result.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)

	refreshClaims, err := tokens.VerifyRefreshToken(result.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, refreshClaims.UserID)

	pending.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestSetPasswordTooShort(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, _, _ := newSignupFixture(users, pending, mail)

	_, err := svc.SetPassword(context.Background(), "hash", "short")
	assert.ErrorIs(t, err, errors.ErrWeakPassword)
	pending.AssertNotCalled(t, "FindByEmailHash", mock.Anything, mock.Anything)
}

func TestResendCode(t *testing.T) {
	users := new(MockUserRepository)
	pending := new(MockPendingSignupRepository)
	mail := new(MockMailer)
	svc, _, cipher := newSignupFixture(users, pending, mail)

	email := "jane@example.com"
	emailHash := crypto.LookupHash(email)
	rowID := uuid.New()

	pending.On("FindByEmailHash", mock.Anything, emailHash).Return(&model.PendingSignup{
		ID:       rowID,
		EmailEnc: mustEncrypt(cipher, email),
	}, nil)

	var newHash string
	pending.On("UpdateOTP", mock.Anything, rowID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Run(func(args mock.Arguments) {
		newHash = args.String(2)
	}).Return(nil)

	var sentOTP string
	mail.On("SendOTP", email, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
		sentOTP = args.String(1)
	}).Return(nil)

	err := svc.ResendCode(context.Background(), emailHash)

	assert.NoError(t, err)
	assert.Equal(t, crypto.LookupHash(sentOTP), newHash)
}
