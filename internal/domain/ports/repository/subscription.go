package repository

import (
	"context"
	"time"

	"community-booking/internal/domain/model"
)

// SubscriptionRepository is the port for enrollment rows.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)

	// FindActiveByClientAndCommunity returns the single active enrollment for
	// the pair, or ErrNotFound.
	FindActiveByClientAndCommunity(ctx context.Context, tx Tx, clientID, communityID string) (*model.Subscription, error)

	// FindPendingByClientAndCommunity returns the most recent pending
	// (pending-plan or pending-payment) enrollment created after `since`.
	FindPendingByClientAndCommunity(ctx context.Context, tx Tx, clientID, communityID string, since time.Time) (*model.Subscription, error)

	// CountByState powers the stats endpoint and the subscriptions gauge.
	CountByState(ctx context.Context, tx Tx) (map[model.SubscriptionState]int, error)

	// FlagExpiredPending marks pending enrollments created before `before` as
	// expired and returns how many rows were newly flagged. Flagged rows stop
	// being candidates for enrollment reuse. Idempotent.
	FlagExpiredPending(ctx context.Context, tx Tx, before time.Time) (int, error)
}
