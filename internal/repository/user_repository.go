package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmailHash(ctx context.Context, emailHash string) (*model.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// WithTransaction runs fn with transaction-bound user and pending-signup
	// repositories; the promote-pending-to-user unit commits atomically.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, users UserRepository, pending PendingSignupRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmailHash(ctx context.Context, emailHash string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email_hash = ?", emailHash).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken resolves a user by a live (non-expired) password reset token.
func (r *userRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expiry > ?", token, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, users UserRepository, pending PendingSignupRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &userRepository{db: tx}, &pendingSignupRepository{db: tx})
	})
}
