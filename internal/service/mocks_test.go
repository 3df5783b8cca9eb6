package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"cuprewards/internal/crypto"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
	// Pending is handed to WithTransaction callbacks.
	Pending repository.PendingSignupRepository
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailHash(ctx context.Context, emailHash string) (*model.User, error) {
	args := m.Called(ctx, emailHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, users repository.UserRepository, pending repository.PendingSignupRepository) error) error {
	return fn(ctx, m, m.Pending)
}

// MockPendingSignupRepository is a mock implementation of PendingSignupRepository.
type MockPendingSignupRepository struct {
	mock.Mock
}

func (m *MockPendingSignupRepository) Create(ctx context.Context, pending *model.PendingSignup) error {
	args := m.Called(ctx, pending)
	return args.Error(0)
}

func (m *MockPendingSignupRepository) FindByEmailHash(ctx context.Context, emailHash string) (*model.PendingSignup, error) {
	args := m.Called(ctx, emailHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingSignup), args.Error(1)
}

func (m *MockPendingSignupRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPendingSignupRepository) DeleteByEmailHash(ctx context.Context, emailHash string) error {
	args := m.Called(ctx, emailHash)
	return args.Error(0)
}

func (m *MockPendingSignupRepository) UpdateOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, otpHash, expiresAt)
	return args.Error(0)
}

func (m *MockPendingSignupRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerProfileRepository is a mock implementation of CustomerProfileRepository.
type MockCustomerProfileRepository struct {
	mock.Mock
	// Ledger is handed to WithTransaction callbacks.
	Ledger repository.TransactionRepository
	// mu serializes WithTransaction like the row lock does.
	mu sync.Mutex
}

func (m *MockCustomerProfileRepository) Create(ctx context.Context, profile *model.CustomerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockCustomerProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockCustomerProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockCustomerProfileRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockCustomerProfileRepository) FindByQRToken(ctx context.Context, token string, now time.Time) (*model.CustomerProfile, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockCustomerProfileRepository) SetQRToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockCustomerProfileRepository) IncrementCups(ctx context.Context, id uuid.UUID, paidCups, freeCups int) error {
	args := m.Called(ctx, id, paidCups, freeCups)
	return args.Error(0)
}

func (m *MockCustomerProfileRepository) ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerProfileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, profiles repository.CustomerProfileRepository, ledger repository.TransactionRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m, m.Ledger)
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Transaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

// MockStaffRepository is a mock implementation of StaffRepository.
type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) CreateProfile(ctx context.Context, profile *model.StaffProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockStaffRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StaffProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffProfile), args.Error(1)
}

func (m *MockStaffRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.StaffProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffProfile), args.Error(1)
}

func (m *MockStaffRepository) List(ctx context.Context) ([]model.StaffProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StaffProfile), args.Error(1)
}

func (m *MockStaffRepository) Assign(ctx context.Context, staffID, siteID uuid.UUID) error {
	args := m.Called(ctx, staffID, siteID)
	return args.Error(0)
}

func (m *MockStaffRepository) FindAssignment(ctx context.Context, staffID, siteID uuid.UUID) (*model.StaffSite, error) {
	args := m.Called(ctx, staffID, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffSite), args.Error(1)
}

func (m *MockStaffRepository) RemoveAssignment(ctx context.Context, staffID, siteID uuid.UUID) error {
	args := m.Called(ctx, staffID, siteID)
	return args.Error(0)
}

func (m *MockStaffRepository) SitesFor(ctx context.Context, staffID uuid.UUID) ([]model.Site, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Site), args.Error(1)
}

// MockSiteRepository is a mock implementation of SiteRepository.
type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) Create(ctx context.Context, site *model.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Site), args.Error(1)
}

func (m *MockSiteRepository) List(ctx context.Context) ([]model.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Site), args.Error(1)
}

// MockMailer is a mock implementation of mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOTP(to, otp string) error {
	args := m.Called(to, otp)
	return args.Error(0)
}

func (m *MockMailer) SendStaffInvite(to, firstName, resetLink string) error {
	args := m.Called(to, firstName, resetLink)
	return args.Error(0)
}

func newTestCipher() *crypto.Cipher {
	c, err := crypto.NewCipher("unit-test-encryption-key")
	if err != nil {
		panic(err)
	}
	return c
}

func mustEncrypt(c *crypto.Cipher, value string) string {
	enc, err := c.Encrypt(value)
	if err != nil {
		panic(err)
	}
	return enc
}
