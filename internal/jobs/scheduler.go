package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"cuprewards/internal/repository"
)

// Scheduler runs the periodic cleanup jobs: purging expired pending
// signups and clearing expired QR tokens.
type Scheduler struct {
	cron      *cron.Cron
	pending   repository.PendingSignupRepository
	customers repository.CustomerProfileRepository
	log       zerolog.Logger
}

// NewScheduler creates the cleanup scheduler.
func NewScheduler(pending repository.PendingSignupRepository, customers repository.CustomerProfileRepository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		pending:   pending,
		customers: customers,
		log:       log,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("*/10 * * * *", s.purgeExpiredSignups); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/15 * * * *", s.clearExpiredQRTokens); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Msg("cleanup scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) purgeExpiredSignups() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.pending.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired pending signups failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("purged expired pending signups")
	}
}

func (s *Scheduler) clearExpiredQRTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := s.customers.ClearExpiredQRTokens(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("clear expired qr tokens failed")
		return
	}
	if cleared > 0 {
		s.log.Info().Int64("cleared", cleared).Msg("cleared expired qr tokens")
	}
}
