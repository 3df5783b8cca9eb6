package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"cuprewards/internal/analytics"
	"cuprewards/internal/errors"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// RecordInput describes one point-of-sale event: cups paid for and free
// cups redeemed, attributed to a site and the acting staff member.
type RecordInput struct {
	CustomerID uuid.UUID
	SiteID     uuid.UUID
	PaidCups   int
	RedeemCups int
}

// RecordResult reports the customer's counters after the transaction.
type RecordResult struct {
	TotalPaidCups     int
	TotalRedeemedCups int
}

// LedgerService owns the reward ledger: validating redemptions against the
// earned entitlement and committing counter updates together with the
// immutable transaction row.
type LedgerService interface {
	Record(ctx context.Context, staffUserID uuid.UUID, in RecordInput) (*RecordResult, error)
}

type ledgerService struct {
	customers repository.CustomerProfileRepository
	staff     repository.StaffRepository
	live      *analytics.LiveCounters
	log       zerolog.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	customers repository.CustomerProfileRepository,
	staff repository.StaffRepository,
	live *analytics.LiveCounters,
	log zerolog.Logger,
) LedgerService {
	return &ledgerService{
		customers: customers,
		staff:     staff,
		live:      live,
		log:       log,
	}
}

// Record applies one transaction. The balance check and the counter
// update run against a row locked for the duration of the database
// transaction, so two concurrent redemptions cannot both spend the same
// free cup. Live-counter publication happens after commit and is
// best-effort only.
func (s *ledgerService) Record(ctx context.Context, staffUserID uuid.UUID, in RecordInput) (*RecordResult, error) {
	staffProfile, err := s.staff.FindByUserID(ctx, staffUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotStaff
		}
		return nil, fmt.Errorf("find staff profile: %w", err)
	}

	if _, err := s.staff.FindAssignment(ctx, staffProfile.ID, in.SiteID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrSiteForbidden
		}
		return nil, fmt.Errorf("check site assignment: %w", err)
	}

	if in.PaidCups < 0 || in.RedeemCups < 0 {
		return nil, errors.ErrInvalidCupCount
	}

	var result RecordResult
	err = s.customers.WithTransaction(ctx, func(ctx context.Context, profiles repository.CustomerProfileRepository, ledger repository.TransactionRepository) error {
		profile, err := profiles.FindByIDForUpdate(ctx, in.CustomerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrCustomerNotFound
			}
			return fmt.Errorf("lock customer profile: %w", err)
		}

		projectedEarned := (profile.TotalPaidCups + in.PaidCups) / model.RewardThreshold
		available := projectedEarned - profile.TotalRedeemedCups

		// A negative balance means an earlier write violated the ledger
		// invariant. Unreachable through this path, but checked anyway.
		if available < 0 {
			s.log.Error().
				Str("customer_id", in.CustomerID.String()).
				Int("total_paid", profile.TotalPaidCups).
				Int("total_redeemed", profile.TotalRedeemedCups).
				Msg("reward balance is negative")
			return errors.ErrInvariantViolation
		}

		if in.RedeemCups > available {
			return errors.ErrInsufficientBalance
		}

		if err := profiles.IncrementCups(ctx, profile.ID, in.PaidCups, in.RedeemCups); err != nil {
			return fmt.Errorf("update counters: %w", err)
		}

		if err := ledger.Create(ctx, &model.Transaction{
			CustomerID: profile.ID,
			SiteID:     in.SiteID,
			StaffID:    staffProfile.ID,
			PaidCups:   in.PaidCups,
			FreeCups:   in.RedeemCups,
		}); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		result = RecordResult{
			TotalPaidCups:     profile.TotalPaidCups + in.PaidCups,
			TotalRedeemedCups: profile.TotalRedeemedCups + in.RedeemCups,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.live.Publish(ctx, in.PaidCups, in.RedeemCups)

	s.log.Info().
		Str("customer_id", in.CustomerID.String()).
		Str("site_id", in.SiteID.String()).
		Int("paid_cups", in.PaidCups).
		Int("redeem_cups", in.RedeemCups).
		Msg("transaction recorded")
	return &result, nil
}
