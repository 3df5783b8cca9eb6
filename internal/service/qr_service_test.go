package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"cuprewards/internal/errors"
	"cuprewards/internal/model"
)

func TestQRIssueReturnsLiveToken(t *testing.T) {
	userID := uuid.New()
	expiresAt := time.Now().Add(5 * time.Minute)
	profile := &model.CustomerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		QRToken:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		QRExpiresAt: &expiresAt,
	}

	customers := &MockCustomerProfileRepository{}
	customers.On("FindByUserID", mock.Anything, userID).Return(profile, nil)

	svc := NewQRService(customers)
	token, exp, err := svc.Issue(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, profile.QRToken, token)
	assert.Equal(t, expiresAt, exp)
	customers.AssertNotCalled(t, "SetQRToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQRIssueReplacesExpiredToken(t *testing.T) {
	userID := uuid.New()
	expired := time.Now().Add(-time.Minute)
	profile := &model.CustomerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		QRToken:     "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		QRExpiresAt: &expired,
	}

	customers := &MockCustomerProfileRepository{}
	customers.On("FindByUserID", mock.Anything, userID).Return(profile, nil)
	customers.On("SetQRToken", mock.Anything, profile.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	svc := NewQRService(customers)
	token, exp, err := svc.Issue(context.Background(), userID)

	assert.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NotEqual(t, profile.QRToken, token)
	assert.WithinDuration(t, time.Now().Add(QRTokenTTL), exp, 5*time.Second)
	customers.AssertExpectations(t)
}

func TestQRIssueFirstToken(t *testing.T) {
	userID := uuid.New()
	profile := &model.CustomerProfile{ID: uuid.New(), UserID: userID}

	customers := &MockCustomerProfileRepository{}
	customers.On("FindByUserID", mock.Anything, userID).Return(profile, nil)
	customers.On("SetQRToken", mock.Anything, profile.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	svc := NewQRService(customers)
	token, _, err := svc.Issue(context.Background(), userID)

	assert.NoError(t, err)
	assert.Len(t, token, 64)
	customers.AssertExpectations(t)
}

func TestQRIssueNoProfile(t *testing.T) {
	customers := &MockCustomerProfileRepository{}
	customers.On("FindByUserID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewQRService(customers)
	_, _, err := svc.Issue(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errors.ErrCustomerNotFound)
}

func TestQRResolve(t *testing.T) {
	profile := &model.CustomerProfile{ID: uuid.New()}

	customers := &MockCustomerProfileRepository{}
	customers.On("FindByQRToken", mock.Anything, "livetoken", mock.AnythingOfType("time.Time")).Return(profile, nil)

	svc := NewQRService(customers)
	resolved, err := svc.Resolve(context.Background(), "livetoken")

	assert.NoError(t, err)
	assert.Equal(t, profile.ID, resolved.ID)
}

func TestQRResolveUnknownOrExpired(t *testing.T) {
	customers := &MockCustomerProfileRepository{}
	customers.On("FindByQRToken", mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, gorm.ErrRecordNotFound)

	svc := NewQRService(customers)
	_, err := svc.Resolve(context.Background(), "staletoken")
	assert.ErrorIs(t, err, errors.ErrQRInvalid)
}
