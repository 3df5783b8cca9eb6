package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/model"
)

// TransactionRepository defines ledger persistence operations. Entries are
// append-only; there is deliberately no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository builds a GORM-backed repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListByCustomer returns a customer's ledger entries, newest first, with
// the site preloaded for display.
func (r *transactionRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := r.db.WithContext(ctx).Preload("Site").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
