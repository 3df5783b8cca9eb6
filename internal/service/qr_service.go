package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/errors"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// QRTokenTTL is how long an issued QR redemption token stays valid.
const QRTokenTTL = 15 * time.Minute

// QRService issues and resolves the short-lived opaque tokens customers
// display at the counter. Tokens are random values looked up by exact
// match, not signed structures, so they can be revoked by overwrite.
type QRService interface {
	Issue(ctx context.Context, userID uuid.UUID) (token string, expiresAt time.Time, err error)
	Resolve(ctx context.Context, token string) (*model.CustomerProfile, error)
}

type qrService struct {
	customers repository.CustomerProfileRepository
}

// NewQRService creates a new QR token service.
func NewQRService(customers repository.CustomerProfileRepository) QRService {
	return &qrService{customers: customers}
}

// Issue returns the profile's current token if it is still valid, so a
// code the customer already displayed keeps working; otherwise a fresh
// token is generated and persisted. Two concurrent issuances may both
// write; last write wins and either token resolves, which is acceptable
// because the token is not a scarce resource.
func (s *qrService) Issue(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	profile, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", time.Time{}, errors.ErrCustomerNotFound
		}
		return "", time.Time{}, fmt.Errorf("find customer profile: %w", err)
	}

	now := time.Now()
	if profile.QRToken != "" && profile.QRExpiresAt != nil && profile.QRExpiresAt.After(now) {
		return profile.QRToken, *profile.QRExpiresAt, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate qr token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expiresAt := now.Add(QRTokenTTL)

	if err := s.customers.SetQRToken(ctx, profile.ID, token, expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("store qr token: %w", err)
	}
	return token, expiresAt, nil
}

// Resolve finds the customer holding a live token.
func (s *qrService) Resolve(ctx context.Context, token string) (*model.CustomerProfile, error) {
	profile, err := s.customers.FindByQRToken(ctx, token, time.Now())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrQRInvalid
		}
		return nil, fmt.Errorf("resolve qr token: %w", err)
	}
	return profile, nil
}
