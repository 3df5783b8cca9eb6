package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cuprewards/internal/model"
)

// CustomerProfileRepository defines customer-profile persistence operations.
type CustomerProfileRepository interface {
	Create(ctx context.Context, profile *model.CustomerProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerProfile, error)
	// FindByIDForUpdate locks the row until the surrounding transaction
	// commits. Only meaningful inside WithTransaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error)
	FindByQRToken(ctx context.Context, token string, now time.Time) (*model.CustomerProfile, error)
	SetQRToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	IncrementCups(ctx context.Context, id uuid.UUID, paidCups, freeCups int) error
	ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error)
	// WithTransaction runs fn with transaction-bound profile and transaction
	// repositories; counter updates and the ledger append commit atomically.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, profiles CustomerProfileRepository, ledger TransactionRepository) error) error
}

type customerProfileRepository struct {
	db *gorm.DB
}

// NewCustomerProfileRepository builds a GORM-backed repository.
func NewCustomerProfileRepository(db *gorm.DB) CustomerProfileRepository {
	return &customerProfileRepository{db: db}
}

func (r *customerProfileRepository) Create(ctx context.Context, profile *model.CustomerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *customerProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *customerProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *customerProfileRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByQRToken resolves a profile by a live QR token, preloading the user
// so staff scans can show the decrypted identity.
func (r *customerProfileRepository) FindByQRToken(ctx context.Context, token string, now time.Time) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	if err := r.db.WithContext(ctx).Preload("User").
		Where("qr_token = ? AND qr_expires_at > ?", token, now).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *customerProfileRepository) SetQRToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CustomerProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"qr_token":      token,
			"qr_expires_at": expiresAt,
		}).Error
}

func (r *customerProfileRepository) IncrementCups(ctx context.Context, id uuid.UUID, paidCups, freeCups int) error {
	return r.db.WithContext(ctx).Model(&model.CustomerProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_paid_cups":     gorm.Expr("total_paid_cups + ?", paidCups),
			"total_redeemed_cups": gorm.Expr("total_redeemed_cups + ?", freeCups),
		}).Error
}

func (r *customerProfileRepository) ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CustomerProfile{}).
		Where("qr_token <> '' AND qr_expires_at < ?", now).
		Updates(map[string]interface{}{
			"qr_token":      "",
			"qr_expires_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *customerProfileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, profiles CustomerProfileRepository, ledger TransactionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &customerProfileRepository{db: tx}, &transactionRepository{db: tx})
	})
}
