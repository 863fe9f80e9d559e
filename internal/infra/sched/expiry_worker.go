package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"community-booking/internal/infra/metrics"
	"community-booking/internal/usecase"
)

// ExpiryWorker periodically flags stale pending enrollments and refreshes the
// admin gauges from a fresh stats snapshot.
type ExpiryWorker struct {
	interval time.Duration
	subUC    *usecase.SubscriptionUseCase
	statsUC  *usecase.StatsUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, subUC *usecase.SubscriptionUseCase, statsUC *usecase.StatsUseCase, logger *zerolog.Logger) *ExpiryWorker {
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		subUC:    subUC,
		statsUC:  statsUC,
		log:      &l,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	n, err := w.subUC.ExpireStalePending(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep failed")
	} else if n > 0 {
		metrics.AddPendingEnrollmentsExpired(n)
	}

	snap, err := w.statsUC.Snapshot(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stats snapshot failed")
		return
	}
	metrics.SetSubscriptionsTotal(snap.SubscriptionsByState)
	metrics.SetCreditsRemaining(snap.CreditsRemaining)
}
