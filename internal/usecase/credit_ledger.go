package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"community-booking/internal/domain"
	"community-booking/internal/domain/ports/repository"
)

// CreditUsage is the consumer-facing view of a subscription's credit state.
type CreditUsage struct {
	Available int
	Consumed  int
	Unlimited bool
}

// CreditLedger tracks per-subscription session credits. A subscription with no
// credit record is on an unlimited plan: HasCredits is always true and
// Consume/Restore are no-ops.
//
// Consume and Restore must be called inside the same transaction that creates
// or cancels the reservation; they re-read the record under a row lock so two
// concurrent consumers cannot both spend the last credit.
type CreditLedger struct {
	credits repository.CreditRecordRepository
	log     *zerolog.Logger
}

func NewCreditLedger(credits repository.CreditRecordRepository, logger *zerolog.Logger) *CreditLedger {
	l := logger.With().Str("component", "CreditLedger").Logger()
	return &CreditLedger{credits: credits, log: &l}
}

func (cl *CreditLedger) HasCredits(ctx context.Context, tx repository.Tx, subscriptionID string) (bool, error) {
	rec, err := cl.credits.FindBySubscription(ctx, tx, subscriptionID)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil // unlimited plan
	}
	if err != nil {
		return false, err
	}
	return rec.Available > 0, nil
}

func (cl *CreditLedger) Consume(ctx context.Context, tx repository.Tx, subscriptionID, actor string) error {
	rec, err := cl.credits.FindBySubscriptionForUpdate(ctx, tx, subscriptionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil // unlimited plan
	}
	if err != nil {
		return err
	}
	if err := rec.Consume(actor); err != nil {
		return err
	}
	if err := cl.credits.Save(ctx, tx, rec); err != nil {
		return err
	}
	cl.log.Debug().Str("subscription_id", subscriptionID).
		Int("available", rec.Available).Int("consumed", rec.Consumed).
		Msg("credit consumed")
	return nil
}

func (cl *CreditLedger) Restore(ctx context.Context, tx repository.Tx, subscriptionID, actor string) error {
	rec, err := cl.credits.FindBySubscriptionForUpdate(ctx, tx, subscriptionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil // unlimited plan
	}
	if err != nil {
		return err
	}
	if err := rec.Restore(actor); err != nil {
		// Restoring past the allotment means a double cancellation slipped
		// through; swallow it so the cancel stays idempotent.
		if errors.Is(err, domain.ErrInvalidState) {
			cl.log.Warn().Str("subscription_id", subscriptionID).Msg("restore skipped, nothing consumed")
			return nil
		}
		return err
	}
	if err := cl.credits.Save(ctx, tx, rec); err != nil {
		return err
	}
	cl.log.Debug().Str("subscription_id", subscriptionID).
		Int("available", rec.Available).Int("consumed", rec.Consumed).
		Msg("credit restored")
	return nil
}

// Usage returns the credit counters for display; Unlimited when no record.
func (cl *CreditLedger) Usage(ctx context.Context, subscriptionID string) (CreditUsage, error) {
	rec, err := cl.credits.FindBySubscription(ctx, repository.NoTX, subscriptionID)
	if errors.Is(err, domain.ErrNotFound) {
		return CreditUsage{Unlimited: true}, nil
	}
	if err != nil {
		return CreditUsage{}, err
	}
	return CreditUsage{Available: rec.Available, Consumed: rec.Consumed}, nil
}
