package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

// SubscriptionUseCase drives the enrollment lifecycle:
// pending-plan / pending-payment -> active -> frozen / back to the funnel.
type SubscriptionUseCase struct {
	subs    repository.SubscriptionRepository
	plans   repository.PlanRepository
	credits repository.CreditRecordRepository
	members repository.MembershipRepository
	txm     repository.TransactionManager
	log     *zerolog.Logger

	// pendingReuseWindow is how far back Enroll looks for a pending row to
	// overwrite instead of stacking duplicates.
	pendingReuseWindow time.Duration
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	credits repository.CreditRecordRepository,
	members repository.MembershipRepository,
	txm repository.TransactionManager,
	pendingReuseWindow time.Duration,
	logger *zerolog.Logger,
) *SubscriptionUseCase {
	if pendingReuseWindow <= 0 {
		pendingReuseWindow = 30 * 24 * time.Hour
	}
	l := logger.With().Str("component", "SubscriptionUseCase").Logger()
	return &SubscriptionUseCase{
		subs:               subs,
		plans:              plans,
		credits:            credits,
		members:            members,
		txm:                txm,
		log:                &l,
		pendingReuseWindow: pendingReuseWindow,
	}
}

// Enroll registers (or resumes) a client's enrollment in a community.
//
// Rules:
//   - An existing active subscription is returned as-is when the caller brought
//     neither plan nor payment; bringing either while active is a conflict.
//   - A pending row created within the reuse window is overwritten (plan and
//     payment fields) and moved to pending-payment instead of duplicating it.
//   - Otherwise a fresh row is created, pending-plan when nothing was supplied.
//
// Every path upserts the membership association row.
func (uc *SubscriptionUseCase) Enroll(ctx context.Context, clientID, communityID string, planID, paymentID *string, actor string) (*model.Subscription, error) {
	if clientID == "" || communityID == "" {
		return nil, domain.ErrInvalidArgument
	}
	var result *model.Subscription
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.members.Ensure(ctx, tx, &model.Membership{
			ClientID:    clientID,
			CommunityID: communityID,
			JoinedAt:    time.Now(),
		}); err != nil {
			return err
		}

		active, err := uc.subs.FindActiveByClientAndCommunity(ctx, tx, clientID, communityID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if active != nil {
			if planID == nil && paymentID == nil {
				result = active
				return nil
			}
			return domain.ErrAlreadyExists
		}

		since := time.Now().Add(-uc.pendingReuseWindow)
		pending, err := uc.subs.FindPendingByClientAndCommunity(ctx, tx, clientID, communityID, since)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if pending != nil && (planID != nil || paymentID != nil) {
			if planID != nil {
				pending.PlanID = planID
			}
			if paymentID != nil {
				pending.PaymentID = paymentID
			}
			pending.State = model.SubscriptionStatePendingPayment
			pending.ModifiedBy = actor
			pending.ModifiedAt = time.Now()
			if err := uc.subs.Save(ctx, tx, pending); err != nil {
				return err
			}
			result = pending
			return nil
		}
		if pending != nil {
			result = pending
			return nil
		}

		sub, err := model.NewSubscription(uuid.NewString(), clientID, communityID, planID, paymentID, actor)
		if err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		result = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("subscription_id", result.ID).Str("client_id", clientID).
		Str("community_id", communityID).Str("state", result.State.String()).
		Msg("enrollment processed")
	return result, nil
}

// MarkPaid activates a pending enrollment once its payment settled, seeding
// the credit record from the plan allotment when the plan is credit-limited.
// Unlimited plans get no record at all; that absence is what the ledger reads
// as "Ilimitado".
func (uc *SubscriptionUseCase) MarkPaid(ctx context.Context, subscriptionID, actor string) (*model.Subscription, error) {
	var result *model.Subscription
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := uc.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if err := sub.Activate(actor); err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}

		if sub.PlanID != nil {
			plan, err := uc.plans.FindByID(ctx, tx, *sub.PlanID)
			if err != nil {
				return err
			}
			if !plan.Unlimited() {
				if _, err := uc.credits.FindBySubscription(ctx, tx, sub.ID); errors.Is(err, domain.ErrNotFound) {
					start := time.Now()
					end := start.AddDate(0, 1, 0)
					if plan.Period == model.PlanPeriodAnnual {
						end = start.AddDate(1, 0, 0)
					}
					rec, err := model.NewCreditRecord(sub.ID, plan.Credits, start, end, actor)
					if err != nil {
						return err
					}
					if err := uc.credits.Save(ctx, tx, rec); err != nil {
						return err
					}
				} else if err != nil {
					return err
				}
			}
		}
		result = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("subscription_id", subscriptionID).Msg("subscription activated")
	return result, nil
}

// Freeze suspends an active subscription. Fails with ErrNotActive otherwise.
func (uc *SubscriptionUseCase) Freeze(ctx context.Context, subscriptionID, actor string) error {
	return uc.transition(ctx, subscriptionID, "frozen", func(s *model.Subscription) error {
		return s.Freeze(actor)
	})
}

// Reactivate resumes a frozen subscription. Fails with ErrInvalidState for any
// other starting state.
func (uc *SubscriptionUseCase) Reactivate(ctx context.Context, subscriptionID, actor string) error {
	return uc.transition(ctx, subscriptionID, "reactivated", func(s *model.Subscription) error {
		return s.Reactivate(actor)
	})
}

// Cancel moves an active subscription back into the payment funnel. History is
// kept; nothing is deleted.
func (uc *SubscriptionUseCase) Cancel(ctx context.Context, subscriptionID, actor string) error {
	return uc.transition(ctx, subscriptionID, "cancelled", func(s *model.Subscription) error {
		return s.Cancel(actor)
	})
}

func (uc *SubscriptionUseCase) transition(ctx context.Context, subscriptionID, what string, apply func(*model.Subscription) error) error {
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := uc.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if err := apply(sub); err != nil {
			return err
		}
		return uc.subs.Save(ctx, tx, sub)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("subscription_id", subscriptionID).Msg("subscription " + what)
	return nil
}

// ExpireStalePending flags funnel rows older than the reuse window so they are
// never resurrected by a later Enroll. Returns how many were newly flagged.
func (uc *SubscriptionUseCase) ExpireStalePending(ctx context.Context) (int, error) {
	before := time.Now().Add(-uc.pendingReuseWindow)
	n, err := uc.subs.FlagExpiredPending(ctx, repository.NoTX, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int("count", n).Msg("stale pending enrollments expired")
	}
	return n, nil
}

// Get returns the subscription by id, regardless of state.
func (uc *SubscriptionUseCase) Get(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	return uc.subs.FindByID(ctx, repository.NoTX, subscriptionID)
}

// GetActive returns the client's active subscription in the community.
func (uc *SubscriptionUseCase) GetActive(ctx context.Context, clientID, communityID string) (*model.Subscription, error) {
	return uc.subs.FindActiveByClientAndCommunity(ctx, repository.NoTX, clientID, communityID)
}

// CountByState delegates to the repo (stats surface).
func (uc *SubscriptionUseCase) CountByState(ctx context.Context) (map[model.SubscriptionState]int, error) {
	return uc.subs.CountByState(ctx, repository.NoTX)
}
