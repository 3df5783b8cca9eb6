package analytics

import (
	"context"

	"github.com/rs/zerolog"

	"cuprewards/internal/cache"
)

const (
	keyCupsSold     = "analytics:cupsSold"
	keyCupsRedeemed = "analytics:cupsRedeemed"
)

// LiveCounters publishes chain-wide cup totals to Redis. Publishing is
// best-effort: failures are logged and never propagate to the caller,
// because the ledger has already committed by the time counters move.
type LiveCounters struct {
	cache *cache.Client
	log   zerolog.Logger
}

// NewLiveCounters creates a live-counter publisher.
func NewLiveCounters(cache *cache.Client, log zerolog.Logger) *LiveCounters {
	return &LiveCounters{cache: cache, log: log}
}

// Publish increments the sold/redeemed counters.
func (l *LiveCounters) Publish(ctx context.Context, paidCups, freeCups int) {
	if paidCups > 0 {
		if err := l.cache.IncrBy(ctx, keyCupsSold, int64(paidCups)); err != nil {
			l.log.Error().Err(err).Int("paid_cups", paidCups).Msg("live counter increment failed")
		}
	}
	if freeCups > 0 {
		if err := l.cache.IncrBy(ctx, keyCupsRedeemed, int64(freeCups)); err != nil {
			l.log.Error().Err(err).Int("free_cups", freeCups).Msg("live counter increment failed")
		}
	}
}

// Snapshot reads the current totals. Missing keys read as zero.
func (l *LiveCounters) Snapshot(ctx context.Context) (sold, redeemed int64) {
	sold, _ = l.cache.GetInt64(ctx, keyCupsSold)
	redeemed, _ = l.cache.GetInt64(ctx, keyCupsRedeemed)
	return sold, redeemed
}
