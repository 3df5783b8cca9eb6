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

func newAuthFixture(users *MockUserRepository, customers *MockCustomerProfileRepository, staff *MockStaffRepository) (AuthService, *auth.TokenService, *crypto.Cipher) {
	tokens := auth.NewTokenService("access-secret", "refresh-secret", "pending-secret")
	cipher := newTestCipher()
	return NewAuthService(users, customers, staff, tokens, cipher, zerolog.Nop()), tokens, cipher
}

func customerUser(cipher *crypto.Cipher, email, password string) (*model.User, *model.CustomerProfile) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user := &model.User{
		ID:           uuid.New(),
		Role:         model.RoleCustomer,
		EmailEnc:     mustEncrypt(cipher, email),
		EmailHash:    crypto.LookupHash(email),
		PasswordHash: &passwordHash,
		Active:       true,
		TokenVersion: 2,
	}
	profile := &model.CustomerProfile{
		ID:           uuid.New(),
		UserID:       user.ID,
		FirstNameEnc: mustEncrypt(cipher, "Jane"),
		LastNameEnc:  mustEncrypt(cipher, "Doe"),
	}
	return user, profile
}

func TestLogin(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, tokens, cipher := newAuthFixture(users, customers, staff)

	user, profile := customerUser(cipher, "jane@example.com", "sup3r-secret")
	users.On("FindByEmailHash", mock.Anything, user.EmailHash).Return(user, nil)
	customers.On("FindByUserID", mock.Anything, user.ID).Return(profile, nil)

	result, err := svc.Login(context.Background(), "jane@example.com", "sup3r-secret")

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, model.RoleCustomer, result.User.Role)
	assert.Equal(t, "jane@example.com", result.User.Profile.Email)
	assert.Equal(t, "Jane", result.User.Profile.FirstName)

	claims, err := tokens.VerifyAccessToken(result.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.TokenVersion, claims.TokenVersion)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, _, cipher := newAuthFixture(users, customers, staff)

	user, _ := customerUser(cipher, "jane@example.com", "sup3r-secret")
	users.On("FindByEmailHash", mock.Anything, user.EmailHash).Return(user, nil)

	_, err := svc.Login(context.Background(), "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, _, _ := newAuthFixture(users, customers, staff)

	users.On("FindByEmailHash", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginNoPasswordSet(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, _, cipher := newAuthFixture(users, customers, staff)

	// Invited staff before onboarding: no password hash yet.
	user := &model.User{
		ID:        uuid.New(),
		Role:      model.RoleStaff,
		EmailEnc:  mustEncrypt(cipher, "new@example.com"),
		EmailHash: crypto.LookupHash("new@example.com"),
		Active:    false,
	}
	users.On("FindByEmailHash", mock.Anything, user.EmailHash).Return(user, nil)

	_, err := svc.Login(context.Background(), "new@example.com", "anything-goes")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, _, cipher := newAuthFixture(users, customers, staff)

	user, _ := customerUser(cipher, "jane@example.com", "sup3r-secret")
	user.Active = false
	users.On("FindByEmailHash", mock.Anything, user.EmailHash).Return(user, nil)

	_, err := svc.Login(context.Background(), "jane@example.com", "sup3r-secret")
	assert.ErrorIs(t, err, errors.ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, tokens, cipher := newAuthFixture(users, customers, staff)

	user, _ := customerUser(cipher, "jane@example.com", "sup3r-secret")
	refreshToken, err := tokens.IssueRefreshToken(user.ID, user.TokenVersion)
	assert.NoError(t, err)

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	accessToken, err := svc.Refresh(context.Background(), refreshToken)
	assert.NoError(t, err)

	claims, err := tokens.VerifyAccessToken(accessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRefreshRevokedVersion(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, tokens, cipher := newAuthFixture(users, customers, staff)

	user, _ := customerUser(cipher, "jane@example.com", "sup3r-secret")
	refreshToken, err := tokens.IssueRefreshToken(user.ID, user.TokenVersion)
	assert.NoError(t, err)

	// Password change after issuance bumped the version.
	user.TokenVersion++
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err = svc.Refresh(context.Background(), refreshToken)
	assert.ErrorIs(t, err, errors.ErrTokenRevoked)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, tokens, _ := newAuthFixture(users, customers, staff)

	accessToken, err := tokens.IssueAccessToken(uuid.New(), model.RoleCustomer, 0)
	assert.NoError(t, err)

	_, err = svc.Refresh(context.Background(), accessToken)
	assert.Error(t, err)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSetStaffPassword(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, _, cipher := newAuthFixture(users, customers, staff)

	resetToken := "feedfacefeedfacefeedfacefeedfacefeedfacefeedfacefeedfacefeedface"
	expiry := time.Now().Add(time.Hour)
	user := &model.User{
		ID:                  uuid.New(),
		Role:                model.RoleStaff,
		EmailEnc:            mustEncrypt(cipher, "staff@example.com"),
		EmailHash:           crypto.LookupHash("staff@example.com"),
		Active:              false,
		TokenVersion:        0,
		PasswordResetToken:  &resetToken,
		PasswordResetExpiry: &expiry,
	}

	users.On("FindByResetToken", mock.Anything, resetToken, mock.AnythingOfType("time.Time")).Return(user, nil)

	var updated *model.User
	users.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*model.User)
	}).Return(nil)

	err := svc.SetStaffPassword(context.Background(), resetToken, "sup3r-secret")

	assert.NoError(t, err)
	assert.True(t, updated.Active)
	assert.True(t, auth.VerifyPassword("sup3r-secret", *updated.PasswordHash))
	assert.Nil(t, updated.PasswordResetToken)
	assert.Nil(t, updated.PasswordResetExpiry)
	assert.Equal(t, 1, updated.TokenVersion)
}

func TestSetStaffPasswordExpiredToken(t *testing.T) {
	users := new(MockUserRepository)
	customers := &MockCustomerProfileRepository{}
	staff := new(MockStaffRepository)
	svc, _, _ := newAuthFixture(users, customers, staff)

	users.On("FindByResetToken", mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, gorm.ErrRecordNotFound)

	err := svc.SetStaffPassword(context.Background(), "deadbeef", "sup3r-secret")
	assert.ErrorIs(t, err, errors.ErrInviteInvalid)
}
