package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/errors"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// Transaction type labels returned in history listings.
const (
	TransactionTypePurchase = "PURCHASE"
	TransactionTypeRedeem   = "REDEEM"
)

// RewardSummary is the customer's current reward standing.
type RewardSummary struct {
	CurrentPoints     int `json:"currentPoints"`
	MaxPoints         int `json:"maxPoints"`
	AvailableFreeCups int `json:"availableFreeCups"`
	TotalPaidCups     int `json:"totalPaidCups"`
	TotalRedeemedCups int `json:"totalRedeemedCups"`
}

// HistoryItem is one ledger entry as shown to the customer.
type HistoryItem struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	PaidCups  int       `json:"paidCups"`
	FreeCups  int       `json:"freeCups"`
	SiteName  string    `json:"siteName"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerService covers the customer-facing read surface.
type CustomerService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*RewardSummary, error)
	History(ctx context.Context, userID uuid.UUID) ([]HistoryItem, error)
}

type customerService struct {
	customers repository.CustomerProfileRepository
	ledger    repository.TransactionRepository
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customers repository.CustomerProfileRepository, ledger repository.TransactionRepository) CustomerService {
	return &customerService{customers: customers, ledger: ledger}
}

func (s *customerService) Summary(ctx context.Context, userID uuid.UUID) (*RewardSummary, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &RewardSummary{
		CurrentPoints:     profile.CurrentPoints(),
		MaxPoints:         model.RewardThreshold,
		AvailableFreeCups: profile.AvailableFreeCups(),
		TotalPaidCups:     profile.TotalPaidCups,
		TotalRedeemedCups: profile.TotalRedeemedCups,
	}, nil
}

// History lists the customer's ledger entries, newest first.
func (s *customerService) History(ctx context.Context, userID uuid.UUID) ([]HistoryItem, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.ledger.ListByCustomer(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	items := make([]HistoryItem, 0, len(transactions))
	for _, tx := range transactions {
		item := HistoryItem{
			ID:        tx.ID,
			Type:      TransactionTypePurchase,
			PaidCups:  tx.PaidCups,
			FreeCups:  tx.FreeCups,
			CreatedAt: tx.CreatedAt,
		}
		if tx.FreeCups > 0 {
			item.Type = TransactionTypeRedeem
		}
		if tx.Site != nil {
			item.SiteName = tx.Site.Name
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *customerService) profile(ctx context.Context, userID uuid.UUID) (*model.CustomerProfile, error) {
	profile, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer profile: %w", err)
	}
	return profile, nil
}
