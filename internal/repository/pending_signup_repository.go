package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/model"
)

// PendingSignupRepository defines pending-signup persistence operations.
type PendingSignupRepository interface {
	Create(ctx context.Context, pending *model.PendingSignup) error
	FindByEmailHash(ctx context.Context, emailHash string) (*model.PendingSignup, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByEmailHash(ctx context.Context, emailHash string) error
	UpdateOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type pendingSignupRepository struct {
	db *gorm.DB
}

// NewPendingSignupRepository builds a GORM-backed repository.
func NewPendingSignupRepository(db *gorm.DB) PendingSignupRepository {
	return &pendingSignupRepository{db: db}
}

func (r *pendingSignupRepository) Create(ctx context.Context, pending *model.PendingSignup) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *pendingSignupRepository) FindByEmailHash(ctx context.Context, emailHash string) (*model.PendingSignup, error) {
	var pending model.PendingSignup
	if err := r.db.WithContext(ctx).Where("email_hash = ?", emailHash).First(&pending).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *pendingSignupRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PendingSignup{}, "id = ?", id).Error
}

func (r *pendingSignupRepository) DeleteByEmailHash(ctx context.Context, emailHash string) error {
	return r.db.WithContext(ctx).Delete(&model.PendingSignup{}, "email_hash = ?", emailHash).Error
}

func (r *pendingSignupRepository) UpdateOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PendingSignup{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp_hash":       otpHash,
			"otp_expires_at": expiresAt,
		}).Error
}

// DeleteExpired purges rows whose OTP expiry is in the past.
func (r *pendingSignupRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.PendingSignup{}, "otp_expires_at < ?", now)
	return res.RowsAffected, res.Error
}
