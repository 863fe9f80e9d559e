package usecase

import (
	"context"

	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

// Stats is the read-only admin snapshot; also feeds the gauges.
type Stats struct {
	SubscriptionsByState map[model.SubscriptionState]int
	ReservationsByStatus map[model.ReservationStatus]int
	CreditsRemaining     int64
}

type StatsUseCase struct {
	subs         repository.SubscriptionRepository
	reservations repository.ReservationRepository
	credits      repository.CreditRecordRepository
}

func NewStatsUseCase(subs repository.SubscriptionRepository, reservations repository.ReservationRepository, credits repository.CreditRecordRepository) *StatsUseCase {
	return &StatsUseCase{subs: subs, reservations: reservations, credits: credits}
}

func (uc *StatsUseCase) Snapshot(ctx context.Context) (*Stats, error) {
	byState, err := uc.subs.CountByState(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	byStatus, err := uc.reservations.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	remaining, err := uc.credits.TotalRemaining(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &Stats{
		SubscriptionsByState: byState,
		ReservationsByStatus: byStatus,
		CreditsRemaining:     remaining,
	}, nil
}
